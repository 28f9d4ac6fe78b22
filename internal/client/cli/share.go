package cli

import (
	"errors"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/wealthvault/internal/client/api"
	pkgapi "github.com/iudanet/wealthvault/pkg/api"
)

// ErrAccessDenied guardian link is invalid, expired or revoked
var ErrAccessDenied = errors.New("access denied")

func (a *App) shareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Manage read-only guardian links",
	}

	var (
		records   []string
		noDetails bool
		noDates   bool
		documents bool
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a guardian link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.unlock(ctx); err != nil {
				return err
			}

			includeAll := len(records) == 0
			details := !noDetails
			dates := !noDates
			share, err := a.data.CreateShare(ctx, pkgapi.CreateShareRequest{
				IncludeAll:           &includeAll,
				IncludePolicyDetails: &details,
				IncludeMaturityDates: &dates,
				IncludeDocuments:     &documents,
				RecordIDs:            records,
			})
			if err != nil {
				return err
			}

			a.io.Println("✓ Guardian link created. Anyone with this link can view the shared records:")
			a.io.Println(share.URL)
			a.io.Printf("Expires: %s\n", share.ExpiresAt.Local().Format("2006-01-02"))
			a.io.Printf("Revoke with: wealthvault share revoke %s\n", share.ID)
			return nil
		},
	}
	create.Flags().StringSliceVar(&records, "records", nil, "share only these record IDs (default: all records)")
	create.Flags().BoolVar(&noDetails, "no-details", false, "hide policy numbers and premiums")
	create.Flags().BoolVar(&noDates, "no-dates", false, "hide due and maturity dates")
	create.Flags().BoolVar(&documents, "documents", false, "include document links")

	list := &cobra.Command{
		Use:   "list",
		Short: "List issued guardian links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.unlock(ctx); err != nil {
				return err
			}

			shares, err := a.data.Shares(ctx)
			if err != nil {
				return err
			}
			if len(shares) == 0 {
				a.io.Println("No guardian links issued.")
				return nil
			}
			renderShares(a.io, shares)
			return nil
		},
	}

	revoke := &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke a guardian link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.unlock(ctx); err != nil {
				return err
			}
			if err := a.data.RevokeShare(ctx, args[0]); err != nil {
				return err
			}
			a.io.Printf("✓ Guardian link %s revoked\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(create, list, revoke)
	return cmd
}

func (a *App) guardianCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "guardian <link>",
		Short: "Open a guardian link (no login required)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, ok := parseGuardianLink(args[0])
			if !ok {
				renderAccessDenied(a.io)
				return ErrAccessDenied
			}

			view, err := a.client.ResolveGuardian(cmd.Context(), token)
			if errors.Is(err, api.ErrAccessDenied) {
				// Без повторов: ссылка недействительна
				renderAccessDenied(a.io)
				return ErrAccessDenied
			}
			if err != nil {
				return err
			}

			renderGuardian(a.io, view)
			return nil
		},
	}
}

// parseGuardianLink извлекает токен из ссылки вида {public}/?guardian=1&token=...
func parseGuardianLink(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	q := u.Query()
	token := q.Get("token")
	if q.Get("guardian") != "1" || token == "" {
		return "", false
	}
	return token, true
}
