package model

import "fmt"

// ChallengeType enumerates the savings challenges a user can start.
type ChallengeType string

// Known challenge types.
const (
	ChallengeNoSpending    ChallengeType = "NO_SPENDING"
	ChallengeCategoryLimit ChallengeType = "CATEGORY_LIMIT"
	ChallengeSaving        ChallengeType = "SAVING"
)

// Valid reports whether t is a known challenge type.
func (t ChallengeType) Valid() bool {
	switch t {
	case ChallengeNoSpending, ChallengeCategoryLimit, ChallengeSaving:
		return true
	}
	return false
}

// Describe returns a short human description of the challenge goal.
func (t ChallengeType) Describe() string {
	switch t {
	case ChallengeNoSpending:
		return "No-spending"
	case ChallengeCategoryLimit:
		return "Category limit"
	case ChallengeSaving:
		return "Spend less than budget"
	}
	return string(t)
}

// Challenge is a time-boxed savings goal. Success and Evaluated are owned
// by the backend; the client only reads them.
type Challenge struct {
	ID             int64
	Type           ChallengeType
	TargetAmount   *int64
	TargetCategory string
	StartDate      string
	EndDate        string
	Success        bool
	Evaluated      bool
}

// ChallengeProgress is the client-side display estimate for a challenge.
type ChallengeProgress struct {
	Percent       float64 // 0-100, one decimal
	DaysRemaining int
	TotalDays     int
}

// ChallengeSpend is the display-only spend inside a challenge window.
type ChallengeSpend struct {
	Spent  int64
	Target int64
	HasCap bool
}

// NewChallenge is the input for creating a challenge.
type NewChallenge struct {
	Type           ChallengeType
	StartDate      string
	EndDate        string
	TargetAmount   *int64
	TargetCategory string
}

// Validate checks the client-side required fields before submission.
func (c NewChallenge) Validate() error {
	var missing []string
	if !c.Type.Valid() {
		missing = append(missing, "type")
	}
	if !IsDate(c.StartDate) {
		missing = append(missing, "start date")
	}
	if !IsDate(c.EndDate) {
		missing = append(missing, "end date")
	}
	if len(missing) == 0 && c.EndDate < c.StartDate {
		return &ValidationError{Fields: []string{"end date"}, Reason: "end date is before start date"}
	}
	switch c.Type {
	case ChallengeNoSpending, ChallengeCategoryLimit:
		if c.TargetAmount == nil || *c.TargetAmount < 0 {
			missing = append(missing, "target amount")
		}
	}
	if c.Type == ChallengeCategoryLimit && c.TargetCategory == "" {
		missing = append(missing, "target category")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// BadgeGrant is a server-issued badge.
type BadgeGrant struct {
	BadgeID     int
	GrantedDate string
}

var badgeNames = map[int]string{
	1: "Saving Beginner",
	2: "Saving Expert",
	3: "Saving King",
}

// Name returns the badge's display name.
func (b BadgeGrant) Name() string {
	if n, ok := badgeNames[b.BadgeID]; ok {
		return n
	}
	return fmt.Sprintf("Badge #%d", b.BadgeID)
}
