package testutil

import "testing"

// BudgetScreenFixture is a six-category ledger viewed at 2020-09 with history
// on both sides of that month. At 2020-09:
//
//	available: cat1 17.10, cat2 8.20, cat3 0, cat4 -17.00, cat5 0.80, cat6 0
//	to be budgeted: 105.99
//	missing budgets: cat3, cat5, cat6
func BudgetScreenFixture(t testing.TB) *Builder {
	t.Helper()
	return NewBuilder(t).
		WithCategories("Everyday", "cat1", "cat2", "cat3").
		WithCategories("Savings", "cat4", "cat5", "cat6").
		WithBudget("cat1", "2020-09", 200).
		WithBudget("cat2", "2020-09", 500).
		WithBudget("cat4", "2020-09", -1000).
		WithBudget("cat2", "2020-10", 200).
		WithBudget("cat3", "2020-10", 500).
		WithBudget("cat4", "2020-10", -1000).
		WithBudget("cat5", "2010-03", 200).
		WithBudget("cat2", "2020-01", 500).
		WithBudget("cat4", "1999-12", -1000).
		WithTransaction("cat1", -100, "2020-09-01").
		WithTransaction("cat1", -190, "2020-09-23").
		WithTransaction("cat1", 1000, "2020-09-10").
		WithTransaction("cat1", -100, "2020-05-01").
		WithTransaction("cat1", 1000, "2020-10-10").
		WithTransaction("cat1", -100, "2021-09-30").
		WithTransaction("cat1", 1000, "2020-02-10").
		WithTransaction("cat1", -100, "2020-08-30").
		WithTransaction("cat2", 300, "2020-09-15").
		WithTransaction("cat2", -50, "2020-09-10").
		WithTransaction("cat2", -190, "2020-04-23").
		WithTransaction("cat2", -50, "2020-06-10").
		WithTransaction("cat2", -190, "2011-06-23").
		WithTransaction("cat2", -10, "2035-10-09").
		WithTransaction("cat3", 300, "2020-12-15").
		WithTransaction("cat4", 300, "2016-12-15").
		WithTransaction("cat5", -10, "2020-09-09").
		WithTransaction("cat5", -100, "2020-09-30").
		WithTransaction("cat5", -10, "2010-09-09").
		WithTransaction("cat5", -100, "2023-10-01").
		WithTransaction("cat5", -50, "2020-11-10").
		WithTransaction(Unassigned, 9999, "2020-08-21").
		WithTransaction(Unassigned, -2, "2020-12-22")
}
