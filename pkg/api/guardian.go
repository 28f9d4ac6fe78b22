package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShareOptions что включать в guardian view
type ShareOptions struct {
	RecordIDs            []string `json:"record_ids,omitempty"`
	IncludeAll           bool     `json:"include_all"`
	IncludePolicyDetails bool     `json:"include_policy_details"`
	IncludeMaturityDates bool     `json:"include_maturity_dates"`
	IncludeDocuments     bool     `json:"include_documents"`
}

// CreateShareRequest тело POST /shares. Пропущенные флаги берутся по умолчанию:
// все записи, детали и даты включены, документы выключены.
type CreateShareRequest struct {
	IncludeAll           *bool    `json:"include_all,omitempty"`
	IncludePolicyDetails *bool    `json:"include_policy_details,omitempty"`
	IncludeMaturityDates *bool    `json:"include_maturity_dates,omitempty"`
	IncludeDocuments     *bool    `json:"include_documents,omitempty"`
	RecordIDs            []string `json:"record_ids,omitempty"`
}

// Share выданная guardian ссылка
type Share struct {
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
	RevokedAt *time.Time   `json:"revoked_at,omitempty"`
	ID        string       `json:"id"`
	URL       string       `json:"url"`
	Token     string       `json:"token"`
	Options   ShareOptions `json:"options"`
	Active    bool         `json:"active"`
}

// ShareListResponse ответ GET /shares
type ShareListResponse struct {
	Shares []Share `json:"shares"`
}

// GuardianRecord редактированная запись. Исключенные поля отсутствуют в JSON.
type GuardianRecord struct {
	CoverageAmount   decimal.Decimal `json:"coverage_amount"`
	PremiumAmount    decimal.Decimal `json:"premium_amount"`
	NextDueDate      *string         `json:"next_due_date,omitempty"`
	MaturityDate     *string         `json:"maturity_date,omitempty"`
	ID               string          `json:"id"`
	Kind             string          `json:"kind"`
	Name             string          `json:"name"`
	PolicyNumber     string          `json:"policy_number"`
	PaymentFrequency string          `json:"payment_frequency"`
	NomineeName      string          `json:"nominee_name"`
	Status           string          `json:"status"`
	DocumentRefs     []string        `json:"document_refs,omitempty"`
}

// GuardianView ответ GET /guardian
type GuardianView struct {
	Records []GuardianRecord `json:"records"`
	Summary PolicySummary    `json:"summary"`
	Options ShareOptions     `json:"options"`
}
