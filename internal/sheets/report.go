package sheets

import (
	"github.com/Veraticus/zerobudget/internal/engine"
	"github.com/Veraticus/zerobudget/internal/model"
)

// Report is the budget of one month as shown on the budget screen.
type Report struct {
	Month        model.Month
	Groups       []engine.GroupView
	ToBeBudgeted model.Amount
}

// ReportFromResult builds a Report from a pipeline result.
func ReportFromResult(r engine.Result) Report {
	return Report{Month: r.Month, Groups: r.Groups, ToBeBudgeted: r.ToBeBudgeted}
}

// layout is the cell grid of a report plus the rows that get special formatting.
type layout struct {
	values [][]any
	// headerRow is the index of the column header row.
	headerRow int
	// groupRows are the indexes of group subtotal rows.
	groupRows []int
}

// columnCount is the number of columns a report uses.
const columnCount = 3

func buildLayout(report Report) layout {
	rows := 5
	for _, g := range report.Groups {
		rows += 1 + len(g.Items)
	}

	l := layout{values: make([][]any, 0, rows)}
	l.values = append(l.values,
		[]any{"Budget", report.Month.Label()},
		[]any{},
		[]any{"To be budgeted", cell(report.ToBeBudgeted)},
		[]any{},
		[]any{"Category", "Budgeted", "Available"},
	)
	l.headerRow = len(l.values) - 1

	for _, g := range report.Groups {
		l.groupRows = append(l.groupRows, len(l.values))
		l.values = append(l.values, []any{g.Name, cell(g.Budgeted()), cell(g.Available())})
		for _, item := range g.Items {
			l.values = append(l.values, []any{"  " + item.CategoryName, cell(item.Budgeted), cell(item.Available)})
		}
	}
	return l
}

// cell renders an amount as a number the spreadsheet can sum.
func cell(a model.Amount) float64 {
	return a.Decimal().InexactFloat64()
}
