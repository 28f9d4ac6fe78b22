package policy

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iudanet/wealthvault/internal/models"
)

// DemoRecordCount number of records seeded for an owner without data.
const DemoRecordCount = 3

// DemoRecords builds the demonstration portfolio for a new owner.
// Dates are relative to now so the demo shows active and attention records
// instead of going stale; statuses are classified, not hardcoded.
func DemoRecords(ownerID string, now time.Time) []*models.PolicyRecord {
	now = now.UTC()
	today := models.DateOf(now)

	records := []*models.PolicyRecord{
		{
			Kind:             models.KindLIC,
			Name:             "Jeevan Anand",
			PolicyNumber:     "LIC123456789",
			PremiumAmount:    decimal.NewFromInt(25000),
			PaymentFrequency: models.FrequencyYearly,
			NextDueDate:      today.AddMonths(2),
			MaturityDate:     today.AddMonths(14 * 12).String(),
			NomineeName:      "Mother",
			CoverageAmount:   decimal.NewFromInt(500000),
			DocumentRefs:     []string{"policy.pdf"},
		},
		{
			Kind:             models.KindMediclaim,
			Name:             "Star Health",
			PolicyNumber:     "SH987654321",
			PremiumAmount:    decimal.NewFromInt(15000),
			PaymentFrequency: models.FrequencyYearly,
			NextDueDate:      today.AddMonths(3),
			MaturityDate:     "Yearly",
			NomineeName:      "Self",
			CoverageAmount:   decimal.NewFromInt(300000),
			DocumentRefs:     []string{},
		},
		{
			Kind:             models.KindTerm,
			Name:             "HDFC Click2Protect",
			PolicyNumber:     "HDFC456789123",
			PremiumAmount:    decimal.NewFromInt(12000),
			PaymentFrequency: models.FrequencyYearly,
			NextDueDate:      today.AddMonths(6),
			MaturityDate:     today.AddMonths(20 * 12).String(),
			NomineeName:      "Father",
			CoverageAmount:   decimal.NewFromInt(1000000),
			DocumentRefs:     []string{"term_policy.pdf"},
		},
	}

	for i, r := range records {
		r.ID = uuid.New().String()
		r.OwnerID = ownerID
		// Разносим created_at, чтобы порядок "новые первыми" был детерминированным
		r.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		r.UpdatedAt = r.CreatedAt
		r.Status = Classify(r, now)
	}

	return records
}
