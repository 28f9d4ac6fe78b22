package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/wealthvault/internal/client/api"
	"github.com/iudanet/wealthvault/internal/client/data"
	"github.com/iudanet/wealthvault/internal/client/form"
	"github.com/iudanet/wealthvault/internal/validation"
	pkgapi "github.com/iudanet/wealthvault/pkg/api"
)

// maxFormAttempts число повторов ввода при ошибках валидации
const maxFormAttempts = 3

var fieldLabels = map[form.Field]string{
	form.FieldName:         "Plan name",
	form.FieldKind:         "Type",
	form.FieldPolicyNumber: "Policy number",
	form.FieldPremium:      "Premium amount",
	form.FieldFrequency:    "Payment frequency (Monthly/Quarterly/Yearly)",
	form.FieldNextDueDate:  "Next due date (YYYY-MM-DD)",
	form.FieldMaturity:     "Maturity (YYYY-MM-DD or text)",
	form.FieldNominee:      "Nominee",
	form.FieldCoverage:     "Coverage amount",
}

func (a *App) listCommand() *cobra.Command {
	var (
		status  string
		offline bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List policy records with summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			status = strings.ToLower(strings.TrimSpace(status))
			switch status {
			case "", "active", "attention", "expired":
			default:
				return fmt.Errorf("unknown status %q, use active, attention or expired", status)
			}

			if err := a.unlock(ctx); err != nil {
				return err
			}

			var snap *data.Snapshot
			var err error
			if offline {
				snap, err = a.data.Cached(ctx)
			} else {
				snap, err = a.data.Reload(ctx)
			}
			if err != nil {
				return err
			}

			if offline {
				a.io.Printf("Cached records from %s\n", snap.LoadedAt.Local().Format("2006-01-02 15:04"))
			}

			policies := snap.Filter(status)
			if len(policies) == 0 {
				a.io.Println("No records found.")
			} else {
				renderPolicies(a.io, policies)
			}
			a.io.Println()
			renderSummary(a.io, snap.Summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status: active, attention, expired")
	cmd.Flags().BoolVar(&offline, "offline", false, "show the records cached on this device")
	return cmd
}

func (a *App) timelineCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "timeline",
		Short: "Show records ordered by next due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.unlock(ctx); err != nil {
				return err
			}

			policies, err := a.data.Timeline(ctx)
			if err != nil {
				return err
			}
			if len(policies) == 0 {
				a.io.Println("No records found.")
				return nil
			}
			renderPolicies(a.io, policies)
			return nil
		},
	}
}

func (a *App) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show full record details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.unlock(ctx); err != nil {
				return err
			}

			p, err := a.data.Get(ctx, args[0])
			if err != nil {
				return err
			}
			renderPolicy(a.io, p)
			return nil
		},
	}
}

func (a *App) addCommand() *cobra.Command {
	var (
		document  string
		protected bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a policy record interactively",
		Long: "Add a policy record interactively.\n" +
			"With --from-document the file is uploaded and recognized fields prefill the form;\n" +
			"completeness fields may then be left empty.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.unlock(ctx); err != nil {
				return err
			}

			f := form.New()
			draft := document != ""
			if draft {
				a.extractInto(ctx, f, document, protected)
			} else if protected {
				f.SetPasswordProtected(true)
			}

			a.printKinds(ctx)
			a.io.Println("Press Enter to keep the value in brackets.")

			created, err := a.submit(f, form.Fields, draft, func(req pkgapi.PolicyRequest) (*pkgapi.Policy, error) {
				return a.data.Create(ctx, req)
			})
			if err != nil {
				return err
			}

			a.io.Printf("✓ Record added: %s (%s)\n", created.Name, created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&document, "from-document", "", "policy document to upload and extract fields from (pdf, jpg, png)")
	cmd.Flags().BoolVar(&protected, "password-protected", false, "mark the document as password protected")
	return cmd
}

func (a *App) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a policy record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.unlock(ctx); err != nil {
				return err
			}

			current, err := a.data.Get(ctx, args[0])
			if err != nil {
				return err
			}

			a.printKinds(ctx)
			a.io.Println("Press Enter to keep the value in brackets.")

			updated, err := a.submit(form.FromPolicy(current), form.Fields, false, func(req pkgapi.PolicyRequest) (*pkgapi.Policy, error) {
				return a.data.Update(ctx, current.ID, req)
			})
			if err != nil {
				return err
			}

			a.io.Printf("✓ Record updated: %s, status %s\n", updated.Name, updated.Status)
			return nil
		},
	}
}

func (a *App) renewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "renew <id>",
		Short: "Record a premium payment and advance the next due date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.unlock(ctx); err != nil {
				return err
			}

			renewed, err := a.data.Renew(ctx, args[0])
			if err != nil && renewed == nil {
				return err
			}
			if err != nil {
				a.io.Printf("Warning: %v\n", err)
			}

			a.io.Printf("✓ %s renewed, next due date %s, status %s\n", renewed.Name, renewed.NextDueDate, renewed.Status)
			return nil
		},
	}
}

// extractInto загружает документ и заполняет форму распознанными полями.
// Любая ошибка распознавания сводится к ручному вводу.
func (a *App) extractInto(ctx context.Context, f *form.Form, path string, protected bool) {
	file, err := os.Open(path)
	if err != nil {
		a.io.Printf("Cannot open document: %v\nPlease enter the details manually.\n", err)
		return
	}
	defer func() { _ = file.Close() }()

	a.io.Println("Uploading document and extracting policy details...")
	res, err := f.Extract(ctx, func(ctx context.Context) (*pkgapi.ExtractionResponse, error) {
		return a.data.Extract(ctx, filepath.Base(path), file, protected)
	})
	if errors.Is(err, form.ErrStale) && res != nil {
		a.io.Printf("Document attached: %s\nPlease enter the details manually.\n", res.Document.Ref)
		return
	}
	if err != nil {
		a.io.Printf("Could not extract data from document: %v\nPlease enter the details manually.\n", err)
		return
	}

	if res.Warning != "" {
		a.io.Printf("Note: %s\n", res.Warning)
	}
	if len(res.Applied) > 0 {
		names := make([]string, 0, len(res.Applied))
		for _, field := range res.Applied {
			names = append(names, string(field))
		}
		a.io.Printf("Prefilled from document: %s\n", strings.Join(names, ", "))
	}
}

func (a *App) printKinds(ctx context.Context) {
	types, err := a.data.Types(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "failed to load investment types", slog.Any("error", err))
		return
	}
	keys := make([]string, 0, len(types))
	for _, t := range types {
		if t.IsActive {
			keys = append(keys, t.Key)
		}
	}
	a.io.Printf("Available types: %s\n", strings.Join(keys, ", "))
}

// submit заполняет форму и сохраняет ее. При ошибках валидации форма сохраняется,
// повторно запрашиваются только поля с ошибками.
func (a *App) submit(f *form.Form, fields []form.Field, draft bool, save func(pkgapi.PolicyRequest) (*pkgapi.Policy, error)) (*pkgapi.Policy, error) {
	ask := fields
	for attempt := 0; attempt < maxFormAttempts; attempt++ {
		if err := a.fill(f, ask); err != nil {
			return nil, err
		}

		req, err := f.ToRequest(draft)
		if err == nil {
			var saved *pkgapi.Policy
			saved, err = save(req)
			if saved != nil {
				// Запись сохранена, но список не перезагрузился
				if err != nil {
					a.io.Printf("Warning: %v\n", err)
				}
				return saved, nil
			}
		}

		fieldErrs := fieldErrors(err)
		if len(fieldErrs) == 0 {
			return nil, err
		}
		f.SetErrors(fieldErrs)
		a.printErrors(fieldErrs)

		ask = nil
		for _, field := range form.Fields {
			if f.Error(field) != "" {
				ask = append(ask, field)
			}
		}
		if len(ask) == 0 {
			return nil, err
		}
	}
	return nil, errors.New("too many invalid attempts, record not saved")
}

// fill запрашивает значения полей; пустой ввод оставляет текущее значение
func (a *App) fill(f *form.Form, fields []form.Field) error {
	for _, field := range fields {
		prompt := fieldLabels[field]
		if current := f.Get(field); current != "" {
			prompt += " [" + current + "]"
		}
		if msg := f.Error(field); msg != "" {
			prompt += " (" + msg + ")"
		}

		value, err := a.io.ReadInput(prompt + ": ")
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", field, err)
		}
		if value != "" {
			f.Set(field, value)
		}
	}
	return nil
}

func fieldErrors(err error) map[string]string {
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return api.FieldErrors(err)
}
