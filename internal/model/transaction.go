// Package model defines domain types for gagyelog ledgers, budgets, and challenges.
package model

// DateLayout is the calendar-day format used by the backend for every date field.
// Dates must be zero-padded so that lexical order matches chronological order.
const DateLayout = "2006-01-02"

// Transaction is one ledger record (a receipt or a manual entry).
type Transaction struct {
	ID         int64
	Date       string // YYYY-MM-DD, local calendar day
	CategoryID int
	ShopName   string
	Amount     int64 // whole won
	IsIncome   bool
	ImagePath  string
	Deleted    bool
}

// Category returns the category metadata for the transaction.
func (t Transaction) Category() Category {
	return CategoryByID(t.CategoryID)
}

// NewTransaction builds a transaction with IsIncome derived from the category.
func NewTransaction(id int64, date string, categoryID int, shop string, amount int64) Transaction {
	return Transaction{
		ID:         id,
		Date:       date,
		CategoryID: categoryID,
		ShopName:   shop,
		Amount:     amount,
		IsIncome:   categoryID == CategoryIncome,
	}
}
