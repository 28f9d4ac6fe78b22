package handlers

import (
	"strings"

	"github.com/iudanet/wealthvault/internal/models"
	"github.com/iudanet/wealthvault/internal/server/service"
	"github.com/iudanet/wealthvault/internal/validation"
	"github.com/iudanet/wealthvault/pkg/api"
)

func policyFromRequest(req *api.PolicyRequest) (*models.PolicyRecord, error) {
	due, err := models.ParseDate(req.NextDueDate)
	if err != nil {
		return nil, validation.FieldErrors{"next_due_date": "next due date must be YYYY-MM-DD"}
	}

	refs := req.DocumentRefs
	if refs == nil {
		refs = []string{}
	}

	return &models.PolicyRecord{
		Kind:              models.Kind(strings.TrimSpace(req.Kind)),
		Name:              strings.TrimSpace(req.Name),
		PolicyNumber:      strings.TrimSpace(req.PolicyNumber),
		PremiumAmount:     req.PremiumAmount,
		PaymentFrequency:  models.Frequency(req.PaymentFrequency),
		NextDueDate:       due,
		MaturityDate:      strings.TrimSpace(req.MaturityDate),
		NomineeName:       strings.TrimSpace(req.NomineeName),
		CoverageAmount:    req.CoverageAmount,
		DocumentRefs:      refs,
		PasswordProtected: req.PasswordProtected,
	}, nil
}

func toAPIPolicy(r *models.PolicyRecord) api.Policy {
	refs := r.DocumentRefs
	if refs == nil {
		refs = []string{}
	}
	return api.Policy{
		ID:                r.ID,
		Kind:              string(r.Kind),
		Name:              r.Name,
		PolicyNumber:      r.PolicyNumber,
		PremiumAmount:     r.PremiumAmount,
		PaymentFrequency:  string(r.PaymentFrequency),
		NextDueDate:       r.NextDueDate.String(),
		MaturityDate:      r.MaturityDate,
		NomineeName:       r.NomineeName,
		CoverageAmount:    r.CoverageAmount,
		DocumentRefs:      refs,
		PasswordProtected: r.PasswordProtected,
		Status:            string(r.Status),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func toAPIPolicies(records []*models.PolicyRecord) []api.Policy {
	out := make([]api.Policy, 0, len(records))
	for _, r := range records {
		out = append(out, toAPIPolicy(r))
	}
	return out
}

func toAPISummary(s models.PolicySummary) api.PolicySummary {
	return api.PolicySummary{
		TotalCoverage: s.TotalCoverage,
		TotalPremium:  s.TotalPremium,
		Total:         s.Total,
		Active:        s.Active,
		Attention:     s.Attention,
		Expired:       s.Expired,
	}
}

func toAPIType(it *models.InvestmentType) api.InvestmentType {
	return api.InvestmentType{
		Key:       it.Key,
		Name:      it.Name,
		Category:  string(it.Category),
		Icon:      it.Icon,
		Color:     it.Color,
		IsDefault: it.IsDefault,
		IsActive:  it.IsActive,
	}
}

func toAPIShareOptions(o models.ShareOptions) api.ShareOptions {
	return api.ShareOptions{
		RecordIDs:            o.RecordIDs,
		IncludeAll:           o.IncludeAll,
		IncludePolicyDetails: o.IncludePolicyDetails,
		IncludeMaturityDates: o.IncludeMaturityDates,
		IncludeDocuments:     o.IncludeDocuments,
	}
}

func shareOptionsFromRequest(req *api.CreateShareRequest) models.ShareOptions {
	opts := models.DefaultShareOptions()
	if req.IncludeAll != nil {
		opts.IncludeAll = *req.IncludeAll
	}
	if req.IncludePolicyDetails != nil {
		opts.IncludePolicyDetails = *req.IncludePolicyDetails
	}
	if req.IncludeMaturityDates != nil {
		opts.IncludeMaturityDates = *req.IncludeMaturityDates
	}
	if req.IncludeDocuments != nil {
		opts.IncludeDocuments = *req.IncludeDocuments
	}
	opts.RecordIDs = req.RecordIDs
	return opts
}

func toAPIShare(link *service.ShareLink, active bool) api.Share {
	return api.Share{
		ID:        link.Share.ID,
		URL:       link.URL,
		Token:     link.Token,
		Options:   toAPIShareOptions(link.Share.Options),
		CreatedAt: link.Share.CreatedAt,
		ExpiresAt: link.Share.ExpiresAt,
		RevokedAt: link.Share.RevokedAt,
		Active:    active,
	}
}

func toAPIGuardianView(v *models.GuardianView) api.GuardianView {
	out := api.GuardianView{
		Records: make([]api.GuardianRecord, 0, len(v.Records)),
		Summary: toAPISummary(v.Summary),
		Options: toAPIShareOptions(v.Options),
	}
	// Subset share не раскрывает гостю ID остальных записей
	out.Options.RecordIDs = nil

	for _, g := range v.Records {
		rec := api.GuardianRecord{
			ID:               g.ID,
			Kind:             string(g.Kind),
			Name:             g.Name,
			PolicyNumber:     g.PolicyNumber,
			PremiumAmount:    g.PremiumAmount,
			PaymentFrequency: string(g.PaymentFrequency),
			NomineeName:      g.NomineeName,
			CoverageAmount:   g.CoverageAmount,
			Status:           string(g.Status),
			MaturityDate:     g.MaturityDate,
			DocumentRefs:     g.DocumentRefs,
		}
		if g.NextDueDate != nil {
			due := g.NextDueDate.String()
			rec.NextDueDate = &due
		}
		out.Records = append(out.Records, rec)
	}
	return out
}

func toAPIDocument(d *models.DocumentRef) api.Document {
	return api.Document{
		Ref:               d.Ref,
		URL:               d.URL,
		ContentType:       d.ContentType,
		Size:              d.Size,
		PasswordProtected: d.PasswordProtected,
	}
}

func toAPIExtracted(e *models.ExtractedPolicy) api.ExtractedPolicy {
	out := api.ExtractedPolicy{
		PolicyNumber: e.PolicyNumber,
		Premium:      e.Premium,
		Maturity:     e.Maturity,
		Nominee:      e.Nominee,
		Coverage:     e.Coverage,
		CompanyName:  e.CompanyName,
		PolicyName:   e.PolicyName,
	}
	if e.Frequency != nil {
		f := string(*e.Frequency)
		out.Frequency = &f
	}
	return out
}
