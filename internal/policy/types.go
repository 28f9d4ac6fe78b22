package policy

import (
	"regexp"
	"strings"

	"github.com/iudanet/wealthvault/internal/models"
)

// DefaultTypes returns the registry entries seeded for every owner.
// Only the four built-in kinds are marked default and protected from deletion.
func DefaultTypes() []models.InvestmentType {
	return []models.InvestmentType{
		{Key: string(models.KindLIC), Name: "LIC", Category: models.CategoryInsurance, Icon: "TrendingUp", Color: "blue", IsDefault: true, IsActive: true},
		{Key: string(models.KindMediclaim), Name: "Mediclaim", Category: models.CategoryHealth, Icon: "Heart", Color: "red", IsDefault: true, IsActive: true},
		{Key: string(models.KindTerm), Name: "Term Insurance", Category: models.CategoryInsurance, Icon: "Shield", Color: "green", IsDefault: true, IsActive: true},
		{Key: string(models.KindNPS), Name: "NPS", Category: models.CategoryRetirement, Icon: "User", Color: "purple", IsDefault: true, IsActive: true},
		{Key: "ppf", Name: "PPF", Category: models.CategoryInvestment, Icon: "PiggyBank", Color: "yellow", IsActive: true},
		{Key: "epf", Name: "EPF", Category: models.CategoryRetirement, Icon: "Building", Color: "indigo", IsActive: true},
		{Key: "mutual_funds", Name: "Mutual Funds", Category: models.CategoryInvestment, Icon: "TrendingUp", Color: "green", IsActive: true},
		{Key: "stocks", Name: "Stocks", Category: models.CategoryInvestment, Icon: "Coins", Color: "blue", IsActive: true},
		{Key: "bonds", Name: "Bonds", Category: models.CategoryInvestment, Icon: "Landmark", Color: "gray", IsActive: true},
		{Key: "fd", Name: "Fixed Deposit", Category: models.CategoryInvestment, Icon: "PiggyBank", Color: "orange", IsActive: true},
	}
}

var whitespace = regexp.MustCompile(`\s+`)

// TypeKey derives a registry key from a display name: "Gold Bonds" -> "gold_bonds".
func TypeKey(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
}
