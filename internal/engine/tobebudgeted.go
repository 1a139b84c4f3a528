package engine

import "github.com/Veraticus/zerobudget/internal/model"

// ComputeToBeBudgeted returns the money still waiting to be assigned at month:
// unassigned transactions dated up to the end of month, minus every budget with
// a month up to and including month. Over-allocation gives a negative result.
func ComputeToBeBudgeted(month model.Month, transactions []model.Transaction, budgets []model.Budget) model.Amount {
	var total model.Amount
	for _, t := range transactions {
		if t.IsUnassigned() && month.Contains(t.Date) {
			total += t.Amount
		}
	}
	for _, b := range budgets {
		if !b.Month.After(month) {
			total -= b.Budgeted
		}
	}
	return total
}
