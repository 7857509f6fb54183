package model

import (
	"strconv"
	"strings"
)

// Category IDs as issued by the backend ("keywordId").
const (
	CategoryDining = iota + 1
	CategoryTransport
	CategoryLiving
	CategoryShopping
	CategoryHealth
	CategoryEducation
	CategorySavings
	CategoryIncome
)

// OtherLabel is the bucket for category IDs outside the known table.
const OtherLabel = "other"

// Category describes one spending category.
type Category struct {
	ID      int
	Label   string // stable English key used in breakdowns
	Display string // label shown by the web client
	Color   string // hex color for charts and calendars
}

// Categories is the fixed category table, ordered by ID.
var Categories = []Category{
	{ID: CategoryDining, Label: "dining", Display: "외식", Color: "#D14D41"},
	{ID: CategoryTransport, Label: "transport", Display: "교통", Color: "#4385BE"},
	{ID: CategoryLiving, Label: "living", Display: "생활비", Color: "#D0A215"},
	{ID: CategoryShopping, Label: "shopping", Display: "쇼핑", Color: "#CE5D97"},
	{ID: CategoryHealth, Label: "health", Display: "건강", Color: "#879A39"},
	{ID: CategoryEducation, Label: "education", Display: "교육", Color: "#8B7EC8"},
	{ID: CategorySavings, Label: "savings/investment", Display: "저축/투자", Color: "#24837B"},
	{ID: CategoryIncome, Label: "income", Display: "수입", Color: "#3AA99F"},
}

var otherCategory = Category{Label: OtherLabel, Display: "기타", Color: "#878580"}

// CategoryByID returns the category for id, or the "other" bucket. It never fails.
func CategoryByID(id int) Category {
	if id >= 1 && id <= len(Categories) {
		return Categories[id-1]
	}
	c := otherCategory
	c.ID = id
	return c
}

// CategoryLabel maps a category ID to its label, falling back to "other".
func CategoryLabel(id int) string {
	return CategoryByID(id).Label
}

// LookupCategory resolves user input (an ID, English label, or display label).
func LookupCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Category{}, false
	}
	if id, err := strconv.Atoi(s); err == nil {
		if id >= 1 && id <= len(Categories) {
			return Categories[id-1], true
		}
		return Category{}, false
	}
	for _, c := range Categories {
		if strings.EqualFold(c.Label, s) || c.Display == s {
			return c, true
		}
	}
	return Category{}, false
}
