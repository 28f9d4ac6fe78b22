package cli

import (
	"github.com/spf13/cobra"

	pkgapi "github.com/iudanet/wealthvault/pkg/api"
)

func (a *App) typesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "Manage investment types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.unlock(ctx); err != nil {
				return err
			}

			types, err := a.data.Types(ctx)
			if err != nil {
				return err
			}
			renderTypes(a.io, types)
			return nil
		},
	}

	var req pkgapi.CreateTypeRequest
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a custom investment type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.unlock(ctx); err != nil {
				return err
			}

			req.Name = args[0]
			created, err := a.data.AddType(ctx, req)
			if err != nil {
				return err
			}
			a.io.Printf("✓ Type added: %s (key %s, category %s)\n", created.Name, created.Key, created.Category)
			return nil
		},
	}
	add.Flags().StringVar(&req.Category, "category", "", "category: Insurance, Investment, Retirement, Health or Custom")
	add.Flags().StringVar(&req.Icon, "icon", "", "icon name")
	add.Flags().StringVar(&req.Color, "color", "", "display color")

	cmd.AddCommand(
		add,
		a.toggleTypeCommand("enable", true),
		a.toggleTypeCommand("disable", false),
		&cobra.Command{
			Use:   "remove <key>",
			Short: "Remove a custom investment type",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				if err := a.unlock(ctx); err != nil {
					return err
				}
				if err := a.data.RemoveType(ctx, args[0]); err != nil {
					return err
				}
				a.io.Printf("✓ Type %s removed\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

func (a *App) toggleTypeCommand(use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <key>",
		Short: use + " an investment type for new records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.unlock(ctx); err != nil {
				return err
			}

			t, err := a.data.SetTypeActive(ctx, args[0], active)
			if err != nil {
				return err
			}
			a.io.Printf("✓ Type %s active: %t\n", t.Key, t.IsActive)
			return nil
		},
	}
}
