package api

import "github.com/shopspring/decimal"

// Document ссылка на загруженный документ, ответ POST /documents
type Document struct {
	Ref               string `json:"ref"`
	URL               string `json:"url"`
	ContentType       string `json:"content_type"`
	Size              int64  `json:"size"`
	PasswordProtected bool   `json:"password_protected"`
}

// ExtractedPolicy распознанные поля; отсутствующие не передаются
type ExtractedPolicy struct {
	PolicyNumber *string          `json:"policy_number,omitempty"`
	Premium      *decimal.Decimal `json:"premium,omitempty"`
	Frequency    *string          `json:"frequency,omitempty"`
	Maturity     *string          `json:"maturity,omitempty"`
	Nominee      *string          `json:"nominee,omitempty"`
	Coverage     *decimal.Decimal `json:"coverage,omitempty"`
	CompanyName  *string          `json:"company_name,omitempty"`
	PolicyName   *string          `json:"policy_name,omitempty"`
}

// ExtractionResponse ответ POST /extractions. Ошибка распознавания
// не является ошибкой запроса: extracted пуст, warning заполнен.
type ExtractionResponse struct {
	Document  Document        `json:"document"`
	Extracted ExtractedPolicy `json:"extracted"`
	Warning   string          `json:"warning,omitempty"`
}
