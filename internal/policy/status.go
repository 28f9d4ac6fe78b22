// Package policy holds the domain rules around policy records:
// status derivation, guardian redaction, renewal and demo seeding.
package policy

import (
	"strings"
	"time"

	"github.com/iudanet/wealthvault/internal/models"
)

// Completeness field names, reported by Incomplete.
const (
	FieldPolicyNumber = "policy_number"
	FieldNominee      = "nominee_name"
	FieldDocuments    = "document_refs"
	FieldNextDueDate  = "next_due_date"
	FieldMaturityDate = "maturity_date"
	FieldCoverage     = "coverage_amount"
)

// Classify derives the lifecycle status of r at now.
// Expiry wins over incompleteness: a past-due record is expired even if fields are missing.
// Календарная дата берется в UTC независимо от зоны now.
func Classify(r *models.PolicyRecord, now time.Time) models.Status {
	if IsExpired(r, models.DateOf(now.UTC())) {
		return models.StatusExpired
	}
	if len(Incomplete(r)) > 0 {
		return models.StatusAttention
	}
	return models.StatusActive
}

// IsExpired reports whether the next payment or the maturity date is strictly before today.
// A descriptive maturity ("Yearly") never expires a record on its own.
func IsExpired(r *models.PolicyRecord, today models.Date) bool {
	if !r.NextDueDate.IsZero() && r.NextDueDate.Before(today) {
		return true
	}
	if maturity, ok := r.MaturityAsDate(); ok && maturity.Before(today) {
		return true
	}
	return false
}

// Incomplete returns the completeness fields missing from r, in a stable order.
// An empty result means the record needs no attention.
func Incomplete(r *models.PolicyRecord) []string {
	var missing []string
	if strings.TrimSpace(r.PolicyNumber) == "" {
		missing = append(missing, FieldPolicyNumber)
	}
	if strings.TrimSpace(r.NomineeName) == "" {
		missing = append(missing, FieldNominee)
	}
	if len(r.DocumentRefs) == 0 {
		missing = append(missing, FieldDocuments)
	}
	if r.NextDueDate.IsZero() {
		missing = append(missing, FieldNextDueDate)
	}
	if strings.TrimSpace(r.MaturityDate) == "" {
		missing = append(missing, FieldMaturityDate)
	}
	if !r.CoverageAmount.IsPositive() {
		missing = append(missing, FieldCoverage)
	}
	return missing
}

// Refresh recomputes r.Status in place and reports whether it changed.
func Refresh(r *models.PolicyRecord, now time.Time) bool {
	status := Classify(r, now)
	if status == r.Status {
		return false
	}
	r.Status = status
	return true
}

// Filter returns the records with the given status; an empty status keeps all.
func Filter(records []*models.PolicyRecord, status models.Status) []*models.PolicyRecord {
	if status == "" {
		return records
	}
	out := make([]*models.PolicyRecord, 0, len(records))
	for _, r := range records {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}
