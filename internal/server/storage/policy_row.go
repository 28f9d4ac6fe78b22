package storage

import (
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iudanet/wealthvault/internal/models"
)

// TimeLayout фиксированной ширины, строки сортируются лексикографически в SQL
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// PolicyRow плоское представление записи в хранилище.
// Любая колонка может отсутствовать; разбор всегда тотален.
type PolicyRow struct {
	ID                sql.NullString
	OwnerID           sql.NullString
	Kind              sql.NullString
	Name              sql.NullString
	PolicyNumber      sql.NullString
	PremiumAmount     sql.NullString
	PaymentFrequency  sql.NullString
	NextDueDate       sql.NullString
	MaturityDate      sql.NullString
	NomineeName       sql.NullString
	CoverageAmount    sql.NullString
	DocumentRefs      sql.NullString // JSON array of strings
	PasswordProtected sql.NullString // "1" / "0"
	Status            sql.NullString
	CreatedAt         sql.NullString
	UpdatedAt         sql.NullString
}

// FormatTime encodes a timestamp for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime decodes a stored timestamp; invalid input yields the zero time.
func ParseTime(s string) time.Time {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		// Допускаем любой RFC 3339, например строки, записанные вручную
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}
		}
	}
	return t.UTC()
}

// SerializePolicy converts a record into its persisted row.
func SerializePolicy(r *models.PolicyRecord) *PolicyRow {
	refs := r.DocumentRefs
	if refs == nil {
		refs = []string{}
	}
	// Маршалинг []string не может завершиться ошибкой
	docs, _ := json.Marshal(refs)

	flag := "0"
	if r.PasswordProtected {
		flag = "1"
	}

	return &PolicyRow{
		ID:                text(r.ID),
		OwnerID:           text(r.OwnerID),
		Kind:              text(string(r.Kind)),
		Name:              text(r.Name),
		PolicyNumber:      text(r.PolicyNumber),
		PremiumAmount:     text(r.PremiumAmount.String()),
		PaymentFrequency:  text(string(r.PaymentFrequency)),
		NextDueDate:       text(r.NextDueDate.String()),
		MaturityDate:      text(r.MaturityDate),
		NomineeName:       text(r.NomineeName),
		CoverageAmount:    text(r.CoverageAmount.String()),
		DocumentRefs:      text(string(docs)),
		PasswordProtected: text(flag),
		Status:            text(string(r.Status)),
		CreatedAt:         text(FormatTime(r.CreatedAt)),
		UpdatedAt:         text(FormatTime(r.UpdatedAt)),
	}
}

// DeserializePolicy converts a persisted row into a record.
// It never fails: absent or malformed columns become zero values.
func DeserializePolicy(row *PolicyRow) *models.PolicyRecord {
	r := &models.PolicyRecord{
		ID:                row.ID.String,
		OwnerID:           row.OwnerID.String,
		Kind:              models.Kind(row.Kind.String),
		Name:              row.Name.String,
		PolicyNumber:      row.PolicyNumber.String,
		PremiumAmount:     parseAmount(row.PremiumAmount),
		PaymentFrequency:  models.Frequency(row.PaymentFrequency.String),
		MaturityDate:      row.MaturityDate.String,
		NomineeName:       row.NomineeName.String,
		CoverageAmount:    parseAmount(row.CoverageAmount),
		DocumentRefs:      parseRefs(row.DocumentRefs),
		PasswordProtected: parseFlag(row.PasswordProtected),
		Status:            models.Status(row.Status.String),
	}

	if due, err := models.ParseDate(row.NextDueDate.String); err == nil {
		r.NextDueDate = due
	}
	if row.CreatedAt.Valid {
		r.CreatedAt = ParseTime(row.CreatedAt.String)
	}
	if row.UpdatedAt.Valid {
		r.UpdatedAt = ParseTime(row.UpdatedAt.String)
	}

	return r
}

func text(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func parseAmount(v sql.NullString) decimal.Decimal {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v.String))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseRefs(v sql.NullString) []string {
	refs := []string{}
	if !v.Valid || v.String == "" {
		return refs
	}
	if err := json.Unmarshal([]byte(v.String), &refs); err != nil || refs == nil {
		return []string{}
	}
	return refs
}

// parseFlag: числовые строки > 0 и "true" означают true, всё остальное false.
func parseFlag(v sql.NullString) bool {
	s := strings.TrimSpace(v.String)
	if !v.Valid || s == "" {
		return false
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n > 0
	}
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
