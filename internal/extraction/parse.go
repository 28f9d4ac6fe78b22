package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iudanet/wealthvault/internal/models"
)

// Parse decodes a generated object. Fields of the wrong type, empty strings,
// non-positive amounts and frequencies outside the enum are treated as absent.
func Parse(raw string) (*models.ExtractedPolicy, error) {
	raw = stripFence(raw)

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}

	out := &models.ExtractedPolicy{
		PolicyNumber: stringField(obj, "policyNumber"),
		Premium:      amountField(obj, "premium"),
		Maturity:     stringField(obj, "maturity"),
		Nominee:      stringField(obj, "nominee"),
		Coverage:     amountField(obj, "coverage"),
		CompanyName:  stringField(obj, "companyName"),
		PolicyName:   stringField(obj, "policyName"),
	}

	if f := stringField(obj, "frequency"); f != nil {
		freq := normalizeFrequency(*f)
		if freq.Valid() {
			out.Frequency = &freq
		}
	}

	return out, nil
}

// stripFence убирает обрамление ```json ... ```, которое иногда добавляет модель
func stripFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimPrefix(raw, "json")
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	return strings.TrimSpace(raw)
}

func stringField(obj map[string]any, key string) *string {
	s, ok := obj[key].(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

var amountRe = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

func amountField(obj map[string]any, key string) *decimal.Decimal {
	var d decimal.Decimal
	var err error

	switch v := obj[key].(type) {
	case json.Number:
		d, err = decimal.NewFromString(v.String())
	case string:
		// "₹25,000", "Rs. 25000.50", "INR 5,00,000 per annum": берем первое число
		m := amountRe.FindString(v)
		if m == "" {
			return nil
		}
		d, err = decimal.NewFromString(strings.ReplaceAll(m, ",", ""))
	default:
		return nil
	}

	if err != nil || !d.IsPositive() {
		return nil
	}
	return &d
}

func normalizeFrequency(s string) models.Frequency {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monthly":
		return models.FrequencyMonthly
	case "quarterly":
		return models.FrequencyQuarterly
	case "yearly", "annual", "annually":
		return models.FrequencyYearly
	}
	return models.Frequency(s)
}
