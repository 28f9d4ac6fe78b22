package policy

import (
	"unicode"

	"github.com/iudanet/wealthvault/internal/models"
)

const maskFill = "***"

// MaskPolicyNumber hides everything except the issuer prefix and the last four characters:
// "LIC123456789" -> "LIC***6789". Values of four characters or fewer are fully masked.
func MaskPolicyNumber(number string) string {
	runes := []rune(number)
	if len(runes) <= 4 {
		return maskFill
	}
	tail := runes[len(runes)-4:]

	// Буквенный префикс выдающей компании не секретен, оставляем его,
	// но никогда не пересекаемся с последними четырьмя символами.
	prefix := 0
	for prefix < len(runes)-4 && unicode.IsLetter(runes[prefix]) {
		prefix++
	}
	if prefix == len(runes)-4 {
		prefix = 0
	}

	return string(runes[:prefix]) + maskFill + string(tail)
}

// Members selects the records a share exposes. Redaction never changes membership.
func Members(records []*models.PolicyRecord, opts models.ShareOptions) []*models.PolicyRecord {
	if opts.IncludeAll {
		return records
	}
	selected := make(map[string]struct{}, len(opts.RecordIDs))
	for _, id := range opts.RecordIDs {
		selected[id] = struct{}{}
	}
	out := make([]*models.PolicyRecord, 0, len(opts.RecordIDs))
	for _, r := range records {
		if _, ok := selected[r.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Project builds the guardian view: aggregates over the unredacted member set,
// then a redacted projection of every member.
func Project(records []*models.PolicyRecord, opts models.ShareOptions) *models.GuardianView {
	members := Members(records, opts)

	view := &models.GuardianView{
		Summary: models.Summarize(members),
		Records: make([]*models.GuardianRecord, 0, len(members)),
		Options: opts,
	}
	for _, r := range members {
		view.Records = append(view.Records, Redact(r, opts))
	}
	return view
}

// Redact projects a single record according to opts.
// The projection never carries the owner or the password flag.
func Redact(r *models.PolicyRecord, opts models.ShareOptions) *models.GuardianRecord {
	g := &models.GuardianRecord{
		ID:               r.ID,
		Kind:             r.Kind,
		Name:             r.Name,
		PolicyNumber:     r.PolicyNumber,
		PremiumAmount:    r.PremiumAmount,
		PaymentFrequency: r.PaymentFrequency,
		NomineeName:      r.NomineeName,
		CoverageAmount:   r.CoverageAmount,
		Status:           r.Status,
	}

	if !opts.IncludePolicyDetails {
		g.PolicyNumber = MaskPolicyNumber(r.PolicyNumber)
	}

	if opts.IncludeMaturityDates {
		due := r.NextDueDate
		maturity := r.MaturityDate
		g.NextDueDate = &due
		g.MaturityDate = &maturity
	}

	if opts.IncludeDocuments && len(r.DocumentRefs) > 0 {
		g.DocumentRefs = make([]string, len(r.DocumentRefs))
		copy(g.DocumentRefs, r.DocumentRefs)
	}

	return g
}
