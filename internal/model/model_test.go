package model

import (
	"errors"
	"testing"
)

func TestCategoryByID_FallsBackToOther(t *testing.T) {
	tests := []struct {
		id   int
		want string
	}{
		{1, "dining"},
		{2, "transport"},
		{7, "savings/investment"},
		{8, "income"},
		{0, OtherLabel},
		{9, OtherLabel},
		{-3, OtherLabel},
	}
	for _, tt := range tests {
		if got := CategoryLabel(tt.id); got != tt.want {
			t.Errorf("CategoryLabel(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestLookupCategory(t *testing.T) {
	tests := []struct {
		in     string
		wantID int
		ok     bool
	}{
		{"3", CategoryLiving, true},
		{"Shopping", CategoryShopping, true},
		{"교통", CategoryTransport, true},
		{"12", 0, false},
		{"", 0, false},
		{"groceries", 0, false},
	}
	for _, tt := range tests {
		c, ok := LookupCategory(tt.in)
		if ok != tt.ok || c.ID != tt.wantID {
			t.Errorf("LookupCategory(%q) = (%d, %v), want (%d, %v)", tt.in, c.ID, ok, tt.wantID, tt.ok)
		}
	}
}

func TestNewTransaction_DerivesIncome(t *testing.T) {
	if !NewTransaction(1, "2024-03-10", CategoryIncome, "salary", 3_000_000).IsIncome {
		t.Error("category 8 should be income")
	}
	if NewTransaction(2, "2024-03-10", CategoryDining, "lunch", 9000).IsIncome {
		t.Error("category 1 should not be income")
	}
}

func TestIsDate(t *testing.T) {
	valid := []string{"2024-03-10", "2024-02-29", "1999-12-31"}
	invalid := []string{"2024-3-10", "2024-03-1", "2023-02-29", "2024/03/10", "", "2024-13-01"}
	for _, s := range valid {
		if !IsDate(s) {
			t.Errorf("IsDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsDate(s) {
			t.Errorf("IsDate(%q) = true, want false", s)
		}
	}
}

func TestEntryInputValidate(t *testing.T) {
	err := EntryInput{}.Validate()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 3 {
		t.Errorf("missing fields = %v, want date, category, amount", ve.Fields)
	}

	ok := EntryInput{Date: "2024-03-10", CategoryID: CategoryDining, Amount: 5000}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid entry rejected: %v", err)
	}
	if got := ok.ShopOrDefault(); got != "외식" {
		t.Errorf("ShopOrDefault = %q, want category display label", got)
	}
}

func TestNewChallengeValidate(t *testing.T) {
	limit := int64(50000)
	tests := []struct {
		name string
		in   NewChallenge
		ok   bool
	}{
		{"saving needs no target", NewChallenge{Type: ChallengeSaving, StartDate: "2024-03-01", EndDate: "2024-03-31"}, true},
		{"category limit complete", NewChallenge{Type: ChallengeCategoryLimit, StartDate: "2024-03-01", EndDate: "2024-03-07", TargetAmount: &limit, TargetCategory: "dining"}, true},
		{"category limit missing category", NewChallenge{Type: ChallengeCategoryLimit, StartDate: "2024-03-01", EndDate: "2024-03-07", TargetAmount: &limit}, false},
		{"no spending missing amount", NewChallenge{Type: ChallengeNoSpending, StartDate: "2024-03-01", EndDate: "2024-03-07"}, false},
		{"end before start", NewChallenge{Type: ChallengeSaving, StartDate: "2024-03-10", EndDate: "2024-03-01"}, false},
		{"unknown type", NewChallenge{Type: "MARATHON", StartDate: "2024-03-01", EndDate: "2024-03-02"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if (err == nil) != tt.ok {
				t.Fatalf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestExhaustionString(t *testing.T) {
	if got := (Exhaustion{AlreadyExceeded: true}).String(); got != AlreadyExceededLabel {
		t.Errorf("String() = %q, want %q", got, AlreadyExceededLabel)
	}
}
