package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/wealthvault/internal/models"
)

func validRecord() *models.PolicyRecord {
	return &models.PolicyRecord{
		Kind:             models.KindTerm,
		Name:             "HDFC Click2Protect",
		PolicyNumber:     "HDFC456789123",
		PremiumAmount:    decimal.NewFromInt(12000),
		PaymentFrequency: models.FrequencyYearly,
		NextDueDate:      models.NewDate(2027, time.July, 5),
		MaturityDate:     "2045-07-05",
		NomineeName:      "Father",
		CoverageAmount:   decimal.NewFromInt(1000000),
	}
}

func TestValidatePolicy(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(r *models.PolicyRecord)
		wantFields []string
	}{
		{name: "valid", modify: func(r *models.PolicyRecord) {}},
		{
			name:       "missing name",
			modify:     func(r *models.PolicyRecord) { r.Name = " " },
			wantFields: []string{"name"},
		},
		{
			name:       "zero premium",
			modify:     func(r *models.PolicyRecord) { r.PremiumAmount = decimal.Zero },
			wantFields: []string{"premium_amount"},
		},
		{
			name: "missing completeness fields",
			modify: func(r *models.PolicyRecord) {
				r.PolicyNumber = ""
				r.NomineeName = ""
				r.NextDueDate = models.Date{}
				r.MaturityDate = ""
			},
			wantFields: []string{"policy_number", "nominee_name", "next_due_date", "maturity_date"},
		},
		{
			name:       "negative coverage reported once",
			modify:     func(r *models.PolicyRecord) { r.CoverageAmount = decimal.NewFromInt(-1) },
			wantFields: []string{"coverage_amount"},
		},
		{
			name:       "unknown frequency",
			modify:     func(r *models.PolicyRecord) { r.PaymentFrequency = "Weekly" },
			wantFields: []string{"payment_frequency"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.modify(r)

			err := ValidatePolicy(r)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var fe FieldErrors
			require.True(t, errors.As(err, &fe))
			assert.Len(t, fe, len(tt.wantFields))
			for _, f := range tt.wantFields {
				assert.Contains(t, fe, f)
			}
		})
	}
}

func TestValidatePolicyDraft_AllowsIncompleteRecord(t *testing.T) {
	r := &models.PolicyRecord{
		Kind:             models.KindLIC,
		Name:             "Scanned policy",
		PaymentFrequency: models.FrequencyYearly,
	}
	assert.NoError(t, ValidatePolicyDraft(r))

	r.Kind = ""
	r.PremiumAmount = decimal.NewFromInt(-5)
	err := ValidatePolicyDraft(r)

	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe, "kind")
	assert.Contains(t, fe, "premium_amount")
}

func TestFieldErrors_Error(t *testing.T) {
	fe := FieldErrors{"name": "required", "kind": "required"}
	assert.Equal(t, "validation failed: kind: required; name: required", fe.Error())
	assert.NoError(t, FieldErrors{}.Err())
}

func TestValidateTypeName(t *testing.T) {
	assert.NoError(t, ValidateTypeName("Gold Bonds"))
	assert.Error(t, ValidateTypeName("   "))
}
