package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iudanet/wealthvault/internal/client/api"
	pkgapi "github.com/iudanet/wealthvault/pkg/api"
)

func (a *App) uploadCommand() *cobra.Command {
	var (
		protected bool
		attach    string
	)

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a policy document (pdf, jpg, png; up to 10 MB)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.unlock(ctx); err != nil {
				return err
			}

			doc, err := a.uploadFile(cmd, args[0], protected)
			if err != nil {
				return err
			}
			a.io.Printf("✓ Uploaded: %s\n%s\n", doc.Ref, doc.URL)

			if attach == "" {
				return nil
			}
			return a.attachDocument(cmd, attach, doc)
		},
	}

	cmd.Flags().BoolVar(&protected, "password-protected", false, "mark the document as password protected")
	cmd.Flags().StringVar(&attach, "attach", "", "attach the document to this record ID")
	return cmd
}

func (a *App) attachDocument(cmd *cobra.Command, id string, doc *pkgapi.Document) error {
	ctx := cmd.Context()

	current, err := a.data.Get(ctx, id)
	if err != nil {
		return err
	}

	req := policyRequest(current)
	req.DocumentRefs = append(req.DocumentRefs, doc.Ref)
	req.PasswordProtected = req.PasswordProtected || doc.PasswordProtected

	updated, err := a.data.Update(ctx, id, req)
	if updated == nil {
		if fields := api.FieldErrors(err); len(fields) > 0 {
			a.printErrors(fields)
			return fmt.Errorf("record %s is incomplete, run 'wealthvault edit %s' first", id, id)
		}
		return err
	}

	a.io.Printf("✓ Attached to %s (%d documents)\n", updated.Name, len(updated.DocumentRefs))
	return nil
}

func policyRequest(p *pkgapi.Policy) pkgapi.PolicyRequest {
	return pkgapi.PolicyRequest{
		PremiumAmount:     p.PremiumAmount,
		CoverageAmount:    p.CoverageAmount,
		Kind:              p.Kind,
		Name:              p.Name,
		PolicyNumber:      p.PolicyNumber,
		PaymentFrequency:  p.PaymentFrequency,
		NextDueDate:       p.NextDueDate,
		MaturityDate:      p.MaturityDate,
		NomineeName:       p.NomineeName,
		DocumentRefs:      append([]string{}, p.DocumentRefs...),
		PasswordProtected: p.PasswordProtected,
	}
}

func (a *App) uploadFile(cmd *cobra.Command, path string, protected bool) (*pkgapi.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer func() { _ = file.Close() }()

	return a.data.Upload(cmd.Context(), filepath.Base(path), file, protected)
}
