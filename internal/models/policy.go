package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind идентифицирует тип инструмента. Фиксированные значения ниже,
// остальные ключи берутся из реестра типов пользователя.
type Kind string

// Built-in kinds
const (
	KindLIC       Kind = "LIC"
	KindMediclaim Kind = "Mediclaim"
	KindTerm      Kind = "Term"
	KindNPS       Kind = "NPS"
)

// Frequency периодичность оплаты премии
type Frequency string

// Payment frequencies
const (
	FrequencyMonthly   Frequency = "Monthly"
	FrequencyQuarterly Frequency = "Quarterly"
	FrequencyYearly    Frequency = "Yearly"
)

// Valid reports whether f is one of the fixed frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// Months returns the length of one payment period in months.
func (f Frequency) Months() int {
	switch f {
	case FrequencyMonthly:
		return 1
	case FrequencyQuarterly:
		return 3
	default:
		return 12
	}
}

// Status derived lifecycle classification of a record
type Status string

// Record statuses
const (
	StatusActive    Status = "active"
	StatusAttention Status = "attention"
	StatusExpired   Status = "expired"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusAttention, StatusExpired:
		return true
	}
	return false
}

// PolicyRecord представляет один отслеживаемый страховой или инвестиционный инструмент.
// ID и OwnerID неизменяемы после создания.
type PolicyRecord struct {
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	PremiumAmount     decimal.Decimal `json:"premium_amount"`
	CoverageAmount    decimal.Decimal `json:"coverage_amount"`
	ID                string          `json:"id"`
	OwnerID           string          `json:"owner_id"`
	Kind              Kind            `json:"kind"`
	Name              string          `json:"name"`
	PolicyNumber      string          `json:"policy_number"`
	PaymentFrequency  Frequency       `json:"payment_frequency"`
	MaturityDate      string          `json:"maturity_date"` // ISO date или описание ("Yearly")
	NomineeName       string          `json:"nominee_name"`
	Status            Status          `json:"status"`
	DocumentRefs      []string        `json:"document_refs"`
	NextDueDate       Date            `json:"next_due_date"`
	PasswordProtected bool            `json:"password_protected"`
}

// Clone returns a deep copy of the record.
func (r *PolicyRecord) Clone() *PolicyRecord {
	c := *r
	c.DocumentRefs = make([]string, len(r.DocumentRefs))
	copy(c.DocumentRefs, r.DocumentRefs)
	return &c
}

// MaturityAsDate parses MaturityDate as a calendar date.
// Returns false for descriptive values such as "Yearly".
func (r *PolicyRecord) MaturityAsDate() (Date, bool) {
	d, err := ParseDate(r.MaturityDate)
	if err != nil || d.IsZero() {
		return Date{}, false
	}
	return d, true
}

// PolicySummary агрегаты по списку записей (баннер "needs attention" и фильтры)
type PolicySummary struct {
	TotalCoverage decimal.Decimal `json:"total_coverage"`
	TotalPremium  decimal.Decimal `json:"total_premium"`
	Total         int             `json:"total"`
	Active        int             `json:"active"`
	Attention     int             `json:"attention"`
	Expired       int             `json:"expired"`
}

// Summarize counts records per status and sums amounts.
func Summarize(records []*PolicyRecord) PolicySummary {
	s := PolicySummary{
		TotalCoverage: decimal.Zero,
		TotalPremium:  decimal.Zero,
	}
	for _, r := range records {
		s.Total++
		s.TotalCoverage = s.TotalCoverage.Add(r.CoverageAmount)
		s.TotalPremium = s.TotalPremium.Add(r.PremiumAmount)
		switch r.Status {
		case StatusActive:
			s.Active++
		case StatusAttention:
			s.Attention++
		case StatusExpired:
			s.Expired++
		}
	}
	return s
}
