package model

import (
	"strings"
	"time"
)

// ValidationError reports client-side required-field failures. It is
// returned before any request is made.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return "validation failed: " + e.Reason
	}
	return "validation failed: missing or invalid " + strings.Join(e.Fields, ", ")
}

// IsDate reports whether s is a zero-padded YYYY-MM-DD calendar date.
func IsDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// EntryInput is a manual ledger entry before submission.
type EntryInput struct {
	Date       string
	CategoryID int
	Shop       string
	Amount     int64
	ImagePath  string
}

// Validate checks that date, category, and amount are present and sane.
func (in EntryInput) Validate() error {
	var missing []string
	if !IsDate(in.Date) {
		missing = append(missing, "date")
	}
	if in.CategoryID < 1 || in.CategoryID > len(Categories) {
		missing = append(missing, "category")
	}
	if in.Amount <= 0 {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// ShopOrDefault returns the trimmed shop name, or the category display
// label when the shop is blank.
func (in EntryInput) ShopOrDefault() string {
	if s := strings.TrimSpace(in.Shop); s != "" {
		return s
	}
	return CategoryByID(in.CategoryID).Display
}
