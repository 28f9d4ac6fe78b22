package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShareOptions флаги включения данных в guardian view
type ShareOptions struct {
	RecordIDs            []string `json:"record_ids,omitempty"` // used only when IncludeAll is false
	IncludeAll           bool     `json:"include_all"`
	IncludePolicyDetails bool     `json:"include_policy_details"`
	IncludeMaturityDates bool     `json:"include_maturity_dates"`
	IncludeDocuments     bool     `json:"include_documents"`
}

// DefaultShareOptions mirrors the share dialog defaults: everything but documents.
func DefaultShareOptions() ShareOptions {
	return ShareOptions{
		IncludeAll:           true,
		IncludePolicyDetails: true,
		IncludeMaturityDates: true,
		IncludeDocuments:     false,
	}
}

// GuardianShare представляет выданную ссылку для члена семьи.
// Токен ссылки подписан и ссылается на ID; отзыв выставляет RevokedAt.
type GuardianShare struct {
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
	RevokedAt *time.Time   `json:"revoked_at,omitempty"`
	ID        string       `json:"id"`
	OwnerID   string       `json:"-"`
	Options   ShareOptions `json:"options"`
}

// Usable reports whether the share can still be resolved at now.
func (s *GuardianShare) Usable(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// GuardianRecord is the redacted projection of a PolicyRecord.
// Optional fields are pointers so that excluded columns are absent, not blank.
type GuardianRecord struct {
	CoverageAmount   decimal.Decimal `json:"coverage_amount"`
	PremiumAmount    decimal.Decimal `json:"premium_amount"`
	ID               string          `json:"id"`
	Kind             Kind            `json:"kind"`
	Name             string          `json:"name"`
	PolicyNumber     string          `json:"policy_number"`
	PaymentFrequency Frequency       `json:"payment_frequency"`
	NomineeName      string          `json:"nominee_name"`
	Status           Status          `json:"status"`
	NextDueDate      *Date           `json:"next_due_date,omitempty"`
	MaturityDate     *string         `json:"maturity_date,omitempty"`
	DocumentRefs     []string        `json:"document_refs,omitempty"`
}

// GuardianView ответ для просмотра по guardian ссылке
type GuardianView struct {
	Summary PolicySummary     `json:"summary"`
	Records []*GuardianRecord `json:"records"`
	Options ShareOptions      `json:"options"`
}
