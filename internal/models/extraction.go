package models

import "github.com/shopspring/decimal"

// ExtractedPolicy best-effort результат распознавания документа.
// Любое поле может отсутствовать.
type ExtractedPolicy struct {
	PolicyNumber *string          `json:"policy_number,omitempty"`
	Premium      *decimal.Decimal `json:"premium,omitempty"`
	Frequency    *Frequency       `json:"frequency,omitempty"`
	Maturity     *string          `json:"maturity,omitempty"`
	Nominee      *string          `json:"nominee,omitempty"`
	Coverage     *decimal.Decimal `json:"coverage,omitempty"`
	CompanyName  *string          `json:"company_name,omitempty"`
	PolicyName   *string          `json:"policy_name,omitempty"`
}

// IsEmpty reports whether nothing was extracted.
func (e *ExtractedPolicy) IsEmpty() bool {
	return e == nil || *e == ExtractedPolicy{}
}

// DocumentRef ссылка на загруженный документ
type DocumentRef struct {
	Ref               string `json:"ref"`
	URL               string `json:"url"`
	ContentType       string `json:"content_type"`
	Size              int64  `json:"size"`
	PasswordProtected bool   `json:"password_protected"`
}
