// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/zerobudget/internal/engine"
	"github.com/Veraticus/zerobudget/internal/model"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#4ECDC4")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#4ECDC4") // Teal
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FFE66D") // Yellow
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#FF6B6B") // Red
	// InfoColor indicates informational messages.
	InfoColor = lipgloss.Color("#95E1D3") // Light teal
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666") // Gray

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SubtitleStyle is used for secondary headings.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// BoldStyle makes text bold.
	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	// BoxStyle is used for bordered content boxes.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)

	// TableHeaderStyle is used for table headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(lipgloss.Color("#333"))

	// GroupRowStyle is used for group headings in the budget table.
	GroupRowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(InfoColor)

	// PromptStyle is used for user prompts.
	PromptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	BudgetIcon  = "💰"
	ChartIcon   = "📊"
	FolderIcon  = "🗄️"
)

// Column widths of the budget table.
const (
	nameWidth   = 28
	amountWidth = 14
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the budget icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(BudgetIcon + " " + title)
}

// FormatPrompt formats a prompt message.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// FormatAmount renders an amount with two decimals. Negative amounts are red.
func FormatAmount(a model.Amount) string {
	if a < 0 {
		return ErrorStyle.Render(a.String())
	}
	return a.String()
}

// RenderBox renders content in a styled box.
func RenderBox(title, content string) string {
	boxTitle := TitleStyle.
		UnsetMargins().
		Render(title)

	boxContent := lipgloss.JoinVertical(
		lipgloss.Left,
		boxTitle,
		content,
	)

	return BoxStyle.Render(boxContent)
}

// RenderBudget renders the budget of a month as a table: the to-be-budgeted
// pool, then every group with its totals followed by its category rows.
func RenderBudget(r engine.Result) string {
	var b strings.Builder

	b.WriteString(FormatTitle(r.Month.Label()))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n\n", BoldStyle.Render("To be budgeted:"), FormatAmount(r.ToBeBudgeted))

	b.WriteString(TableHeaderStyle.Render(row("Category", "Budgeted", "Available")))
	b.WriteString("\n")

	for _, g := range r.Groups {
		b.WriteString(GroupRowStyle.Render(row(g.Name, g.Budgeted().String(), g.Available().String())))
		b.WriteString("\n")
		for _, item := range g.Items {
			b.WriteString(itemRow(item))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func itemRow(item engine.ViewItem) string {
	name := truncate("  "+item.CategoryName, nameWidth)
	return fmt.Sprintf("%-*s%*s%s",
		nameWidth, name,
		amountWidth, item.Budgeted.String(),
		padAmount(item.Available))
}

// padAmount right-aligns before styling so escape codes do not skew the column.
func padAmount(a model.Amount) string {
	s := a.String()
	if pad := amountWidth - len(s); pad > 0 {
		return strings.Repeat(" ", pad) + FormatAmount(a)
	}
	return FormatAmount(a)
}

func row(name, budgeted, available string) string {
	return fmt.Sprintf("%-*s%*s%*s",
		nameWidth, truncate(name, nameWidth),
		amountWidth, budgeted,
		amountWidth, available)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width-1 {
		return s
	}
	return string(r[:width-2]) + "…"
}
