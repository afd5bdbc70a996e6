package models

// Expense category keys. Income transactions carry no category.
const (
	CategoryGroceries      = "groceries"
	CategoryRent           = "rent"
	CategoryUtilities      = "utilities"
	CategoryTransportation = "transportation"
	CategoryEntertainment  = "entertainment"
	CategoryDining         = "dining"
	CategoryHealth         = "health"
	CategoryInsurance      = "insurance"
	CategorySavings        = "savings"
	CategoryClothing       = "clothing"
	CategoryPersonal       = "personal"
	CategoryOthers         = "others"
)

var expenseCategories = map[string]bool{
	CategoryGroceries:      true,
	CategoryRent:           true,
	CategoryUtilities:      true,
	CategoryTransportation: true,
	CategoryEntertainment:  true,
	CategoryDining:         true,
	CategoryHealth:         true,
	CategoryInsurance:      true,
	CategorySavings:        true,
	CategoryClothing:       true,
	CategoryPersonal:       true,
	CategoryOthers:         true,
}

// ValidExpenseCategory reports whether key is a known expense category.
func ValidExpenseCategory(key string) bool {
	return expenseCategories[key]
}
