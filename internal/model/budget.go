package model

// Budget is the amount assigned to one category for one month.
type Budget struct {
	Month      Month
	ID         int64
	CategoryID int64
	Budgeted   Amount
}

// BudgetWithCategory joins a budget row with its category.
type BudgetWithCategory struct {
	Category Category
	Budget   Budget
}

// BudgetsOfCategory is a category with all of its budget rows.
type BudgetsOfCategory struct {
	Budgets  []Budget
	Category Category
}

// TransactionsOfCategory is a category with all of its transactions.
type TransactionsOfCategory struct {
	Transactions []Transaction
	Category     Category
}
