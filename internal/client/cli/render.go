package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/iudanet/wealthvault/pkg/api"
)

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func renderPolicies(w io.Writer, policies []api.Policy) {
	tw := table(w)
	_, _ = fmt.Fprintln(tw, "ID\tKIND\tNAME\tSTATUS\tNEXT DUE\tPREMIUM\tFREQUENCY")
	for _, p := range policies {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Kind, p.Name, p.Status, orDash(p.NextDueDate), money(p.PremiumAmount), p.PaymentFrequency)
	}
	_ = tw.Flush()
}

func renderSummary(w io.Writer, s api.PolicySummary) {
	_, _ = fmt.Fprintf(w, "Total: %d  Active: %d  Attention: %d  Expired: %d\n",
		s.Total, s.Active, s.Attention, s.Expired)
	_, _ = fmt.Fprintf(w, "Total coverage: %s  Total premium: %s\n",
		money(s.TotalCoverage), money(s.TotalPremium))
	if s.Attention > 0 {
		_, _ = fmt.Fprintf(w, "! %d policies need attention\n", s.Attention)
	}
}

func renderPolicy(w io.Writer, p *api.Policy) {
	tw := table(w)
	rows := [][2]string{
		{"ID", p.ID},
		{"Name", p.Name},
		{"Kind", p.Kind},
		{"Status", p.Status},
		{"Policy number", orDash(p.PolicyNumber)},
		{"Premium", money(p.PremiumAmount) + " " + p.PaymentFrequency},
		{"Coverage", money(p.CoverageAmount)},
		{"Next due date", orDash(p.NextDueDate)},
		{"Maturity", orDash(p.MaturityDate)},
		{"Nominee", orDash(p.NomineeName)},
		{"Documents", orDash(strings.Join(p.DocumentRefs, ", "))},
		{"Password protected", fmt.Sprint(p.PasswordProtected)},
		{"Updated", p.UpdatedAt.Local().Format("2006-01-02 15:04")},
	}
	for _, r := range rows {
		_, _ = fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
	}
	_ = tw.Flush()
}

func renderTypes(w io.Writer, types []api.InvestmentType) {
	tw := table(w)
	_, _ = fmt.Fprintln(tw, "KEY\tNAME\tCATEGORY\tDEFAULT\tACTIVE")
	for _, t := range types {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\n", t.Key, t.Name, t.Category, t.IsDefault, t.IsActive)
	}
	_ = tw.Flush()
}

func renderShares(w io.Writer, shares []api.Share) {
	tw := table(w)
	_, _ = fmt.Fprintln(tw, "ID\tCREATED\tEXPIRES\tACTIVE\tRECORDS")
	for _, s := range shares {
		records := "all"
		if !s.Options.IncludeAll {
			records = strings.Join(s.Options.RecordIDs, ",")
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", s.ID,
			s.CreatedAt.Local().Format("2006-01-02"), s.ExpiresAt.Local().Format("2006-01-02"), s.Active, records)
	}
	_ = tw.Flush()
}

func renderGuardian(w io.Writer, view *api.GuardianView) {
	_, _ = fmt.Fprintln(w, "=== Family Policy Overview (read-only) ===")
	renderSummary(w, view.Summary)
	_, _ = fmt.Fprintln(w)

	tw := table(w)
	header := "NAME\tKIND\tSTATUS\tCOVERAGE\tNOMINEE"
	if view.Options.IncludePolicyDetails {
		header += "\tPOLICY NUMBER\tPREMIUM"
	}
	if view.Options.IncludeMaturityDates {
		header += "\tNEXT DUE\tMATURITY"
	}
	if view.Options.IncludeDocuments {
		header += "\tDOCUMENTS"
	}
	_, _ = fmt.Fprintln(tw, header)

	for _, r := range view.Records {
		row := []string{r.Name, r.Kind, r.Status, money(r.CoverageAmount), orDash(r.NomineeName)}
		if view.Options.IncludePolicyDetails {
			row = append(row, orDash(r.PolicyNumber), money(r.PremiumAmount)+" "+r.PaymentFrequency)
		}
		if view.Options.IncludeMaturityDates {
			row = append(row, orDash(deref(r.NextDueDate)), orDash(deref(r.MaturityDate)))
		}
		if view.Options.IncludeDocuments {
			row = append(row, orDash(strings.Join(r.DocumentRefs, ", ")))
		}
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func renderAccessDenied(w io.Writer) {
	_, _ = fmt.Fprintln(w, "==============================")
	_, _ = fmt.Fprintln(w, "        ACCESS DENIED")
	_, _ = fmt.Fprintln(w, "==============================")
	_, _ = fmt.Fprintln(w, "This link is invalid, expired or has been revoked.")
	_, _ = fmt.Fprintln(w, "Ask the policy owner for a new link.")
}
