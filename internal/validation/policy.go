package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iudanet/wealthvault/internal/models"
)

// FieldErrors ошибки валидации по полям формы (поле -> сообщение)
type FieldErrors map[string]string

// Error implements error with a stable field order.
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, fe[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns fe as an error, or nil when there are no field errors.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func (fe FieldErrors) add(field, msg string) {
	if _, exists := fe[field]; !exists {
		fe[field] = msg
	}
}

// ValidatePolicyDraft проверяет минимальный набор полей, достаточный для сохранения записи.
// Поля полноты (номер, номинант, даты) могут быть пустыми: такая запись получит статус attention.
func ValidatePolicyDraft(r *models.PolicyRecord) error {
	fe := FieldErrors{}
	validateDraft(r, fe)
	return fe.Err()
}

// ValidatePolicy применяет правила формы редактирования.
func ValidatePolicy(r *models.PolicyRecord) error {
	fe := FieldErrors{}
	validateDraft(r, fe)

	if strings.TrimSpace(r.PolicyNumber) == "" {
		fe.add("policy_number", "policy number is required")
	}
	if strings.TrimSpace(r.NomineeName) == "" {
		fe.add("nominee_name", "nominee is required")
	}
	if !r.PremiumAmount.IsPositive() {
		fe.add("premium_amount", "premium must be greater than 0")
	}
	if !r.CoverageAmount.IsPositive() {
		fe.add("coverage_amount", "coverage must be greater than 0")
	}
	if r.NextDueDate.IsZero() {
		fe.add("next_due_date", "next due date is required")
	}
	if strings.TrimSpace(r.MaturityDate) == "" {
		fe.add("maturity_date", "maturity date is required")
	}

	return fe.Err()
}

func validateDraft(r *models.PolicyRecord, fe FieldErrors) {
	if strings.TrimSpace(r.Name) == "" {
		fe.add("name", "policy name is required")
	}
	if strings.TrimSpace(string(r.Kind)) == "" {
		fe.add("kind", "type is required")
	}
	if !r.PaymentFrequency.Valid() {
		fe.add("payment_frequency", "frequency must be Monthly, Quarterly or Yearly")
	}
	if r.PremiumAmount.IsNegative() {
		fe.add("premium_amount", "premium cannot be negative")
	}
	if r.CoverageAmount.IsNegative() {
		fe.add("coverage_amount", "coverage cannot be negative")
	}
	if len(r.Name) > 200 {
		fe.add("name", "policy name must not exceed 200 characters")
	}
}

// ValidateTypeName проверяет имя пользовательского типа инструмента.
func ValidateTypeName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return FieldErrors{"name": "type name is required"}
	}
	if len(name) > 64 {
		return FieldErrors{"name": "type name must not exceed 64 characters"}
	}
	return nil
}
