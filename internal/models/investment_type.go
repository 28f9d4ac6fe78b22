package models

// Category группа типа инструмента
type Category string

// Investment type categories
const (
	CategoryInsurance  Category = "Insurance"
	CategoryInvestment Category = "Investment"
	CategoryRetirement Category = "Retirement"
	CategoryHealth     Category = "Health"
	CategoryCustom     Category = "Custom"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryInsurance, CategoryInvestment, CategoryRetirement, CategoryHealth, CategoryCustom:
		return true
	}
	return false
}

// InvestmentType описывает запись реестра типов пользователя.
// Key совпадает со значением PolicyRecord.Kind.
type InvestmentType struct {
	Key       string   `json:"key"`
	OwnerID   string   `json:"-"`
	Name      string   `json:"name"`
	Category  Category `json:"category"`
	Icon      string   `json:"icon"`
	Color     string   `json:"color"`
	IsDefault bool     `json:"is_default"` // default entries cannot be deleted
	IsActive  bool     `json:"is_active"`  // inactive types are hidden from creation
}
