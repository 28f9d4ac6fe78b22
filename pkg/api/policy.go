// Package api содержит DTO HTTP API, общие для сервера и клиента.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// PolicyRequest тело создания (POST /policies) и редактирования (PUT /policies/{id})
type PolicyRequest struct {
	PremiumAmount     decimal.Decimal `json:"premium_amount"`
	CoverageAmount    decimal.Decimal `json:"coverage_amount"`
	Kind              string          `json:"kind"`
	Name              string          `json:"name"`
	PolicyNumber      string          `json:"policy_number"`
	PaymentFrequency  string          `json:"payment_frequency"`
	NextDueDate       string          `json:"next_due_date"` // 2006-01-02 или пусто
	MaturityDate      string          `json:"maturity_date"` // дата или описание ("Yearly")
	NomineeName       string          `json:"nominee_name"`
	DocumentRefs      []string        `json:"document_refs"`
	PasswordProtected bool            `json:"password_protected"`
	Draft             bool            `json:"draft,omitempty"` // создание из загруженного документа, поля полноты необязательны
}

// Policy запись в ответах API
type Policy struct {
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	PremiumAmount     decimal.Decimal `json:"premium_amount"`
	CoverageAmount    decimal.Decimal `json:"coverage_amount"`
	ID                string          `json:"id"`
	Kind              string          `json:"kind"`
	Name              string          `json:"name"`
	PolicyNumber      string          `json:"policy_number"`
	PaymentFrequency  string          `json:"payment_frequency"`
	NextDueDate       string          `json:"next_due_date"`
	MaturityDate      string          `json:"maturity_date"`
	NomineeName       string          `json:"nominee_name"`
	Status            string          `json:"status"`
	DocumentRefs      []string        `json:"document_refs"`
	PasswordProtected bool            `json:"password_protected"`
}

// PolicySummary агрегаты по всем записям владельца
type PolicySummary struct {
	TotalCoverage decimal.Decimal `json:"total_coverage"`
	TotalPremium  decimal.Decimal `json:"total_premium"`
	Total         int             `json:"total"`
	Active        int             `json:"active"`
	Attention     int             `json:"attention"`
	Expired       int             `json:"expired"`
}

// PolicyListResponse ответ GET /policies
type PolicyListResponse struct {
	Policies []Policy      `json:"policies"`
	Summary  PolicySummary `json:"summary"`
}

// TimelineResponse ответ GET /policies/timeline
type TimelineResponse struct {
	Policies []Policy `json:"policies"`
}
