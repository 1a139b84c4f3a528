package engine

import "github.com/Veraticus/zerobudget/internal/model"

// ComputeAvailable returns the available balance of every category at month:
// all of its transactions dated up to the end of month plus all of its budgets
// with a month up to and including month.
//
// Both maps must hold an entry, possibly empty, for every category. When they
// don't, the joins that built them are out of step with the category list and
// ok is false: no balance is reported rather than a partial one.
func ComputeAvailable(
	month model.Month,
	categories []model.Category,
	budgetsByCategory map[int64][]model.Budget,
	transactionsByCategory map[int64][]model.Transaction,
) (available map[int64]model.Amount, ok bool) {
	if len(budgetsByCategory) != len(categories) || len(transactionsByCategory) != len(categories) {
		return nil, false
	}

	available = make(map[int64]model.Amount, len(categories))
	for _, c := range categories {
		budgets, hasBudgets := budgetsByCategory[c.ID]
		transactions, hasTransactions := transactionsByCategory[c.ID]
		if !hasBudgets || !hasTransactions {
			return nil, false
		}
		available[c.ID] = availableOf(month, budgets, transactions)
	}
	return available, true
}

func availableOf(month model.Month, budgets []model.Budget, transactions []model.Transaction) model.Amount {
	var total model.Amount
	for _, t := range transactions {
		if month.Contains(t.Date) {
			total += t.Amount
		}
	}
	for _, b := range budgets {
		if !b.Month.After(month) {
			total += b.Budgeted
		}
	}
	return total
}

// IndexBudgets turns a budgets-of-each-category join into a map keyed by category id.
func IndexBudgets(entries []model.BudgetsOfCategory) map[int64][]model.Budget {
	index := make(map[int64][]model.Budget, len(entries))
	for _, e := range entries {
		index[e.Category.ID] = e.Budgets
	}
	return index
}

// IndexTransactions turns a transactions-of-each-category join into a map keyed by category id.
func IndexTransactions(entries []model.TransactionsOfCategory) map[int64][]model.Transaction {
	index := make(map[int64][]model.Transaction, len(entries))
	for _, e := range entries {
		index[e.Category.ID] = e.Transactions
	}
	return index
}
