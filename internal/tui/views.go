package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/zerobudget/internal/engine"
	"github.com/Veraticus/zerobudget/internal/model"
)

const (
	minNameWidth = 16
	amountWidth  = 14
)

func (m Model) render() string {
	sections := []string{m.renderHeader()}

	if m.result == nil {
		sections = append(sections, lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Loading budget..."))
	} else {
		sections = append(sections, m.renderTable(*m.result))
	}

	if prompt := m.renderPrompt(); prompt != "" {
		sections = append(sections, prompt)
	}
	sections = append(sections, m.renderStatus(), m.help.View(m.keymap))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	if m.month.IsZero() {
		return m.theme.Title.Render("Budget")
	}

	title := m.theme.Title.Render("◀ " + m.month.Label() + " ▶")
	if m.result == nil {
		return title
	}

	tbb := m.theme.Bold.Render("To be budgeted: ") + m.amount(m.result.ToBeBudgeted)
	return lipgloss.JoinVertical(lipgloss.Left, title, m.theme.RoundedBox.Render(tbb))
}

func (m Model) renderTable(r engine.Result) string {
	nameWidth := m.nameWidth()
	var b strings.Builder

	b.WriteString(m.theme.Header.Render(fmt.Sprintf("%-*s%*s%*s",
		nameWidth, "Category", amountWidth, "Budgeted", amountWidth, "Available")))
	b.WriteString("\n")

	if len(r.Groups) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Muted).Render("No categories yet"))
		return b.String()
	}

	index := 0
	for _, g := range r.Groups {
		b.WriteString(m.theme.GroupRow.Render(fmt.Sprintf("%-*s%*s%*s",
			nameWidth, clip(g.Name, nameWidth),
			amountWidth, g.Budgeted().String(),
			amountWidth, g.Available().String())))
		b.WriteString("\n")

		for _, item := range g.Items {
			b.WriteString(m.renderItem(item, nameWidth, index == m.cursor))
			b.WriteString("\n")
			index++
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderItem(item engine.ViewItem, nameWidth int, selected bool) string {
	name := clip("  "+item.CategoryName, nameWidth)
	budgeted := fmt.Sprintf("%*s", amountWidth, item.Budgeted.String())
	available := fmt.Sprintf("%*s", amountWidth, item.Available.String())

	if selected {
		return m.theme.Selected.Render(fmt.Sprintf("%-*s", nameWidth, name) + budgeted + available)
	}

	style := m.theme.Normal
	if item.Available < 0 {
		style = m.theme.Negative
	}
	return m.theme.Normal.Render(fmt.Sprintf("%-*s", nameWidth, name)+budgeted) + style.Render(available)
}

func (m Model) renderPrompt() string {
	switch m.state {
	case StateEditing:
		item, _ := m.selected()
		return m.theme.Bold.Render(item.CategoryName) + "\n" + m.input.View()
	case StateConfirmClear:
		return m.theme.StatusWarning.Render(
			fmt.Sprintf("Set every budget of %s to 0? (y/N)", m.month.Label()))
	default:
		return ""
	}
}

func (m Model) renderStatus() string {
	switch {
	case m.lastError != nil:
		return m.theme.StatusError.Render("✗ " + m.lastError.Error())
	case m.status != "":
		return m.theme.StatusSuccess.Render("✓ " + m.status)
	default:
		return ""
	}
}

func (m Model) amount(a model.Amount) string {
	switch {
	case a < 0:
		return m.theme.Negative.Render(a.String())
	case a > 0:
		return m.theme.Positive.Render(a.String())
	default:
		return m.theme.Normal.Render(a.String())
	}
}

// nameWidth gives the category column whatever the amount columns leave.
func (m Model) nameWidth() int {
	w := m.width - 2*amountWidth
	if w < minNameWidth {
		return minNameWidth
	}
	if w > 40 {
		return 40
	}
	return w
}

func clip(s string, width int) string {
	r := []rune(s)
	if len(r) < width {
		return s
	}
	return string(r[:width-2]) + "…"
}
