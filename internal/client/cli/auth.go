package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/wealthvault/internal/client/session"
)

func (a *App) registerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register a new account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a.io.Println("=== Registration ===")

			username, err := a.io.ReadInput("Username: ")
			if err != nil {
				return fmt.Errorf("failed to read username: %w", err)
			}

			password, err := a.newPassword()
			if err != nil {
				return err
			}

			if err := a.session.Register(ctx, username, password); err != nil {
				return err
			}

			a.io.Println("✓ Registration successful!")
			a.io.Printf("Logged in as %s\n", username)
			a.io.Println("IMPORTANT: remember your master password, it cannot be recovered.")
			return nil
		},
	}
}

// newPassword запрашивает пароль с подтверждением при интерактивном вводе
func (a *App) newPassword() (string, error) {
	password, err := a.masterPassword("Master password (min 12 chars): ")
	if err != nil {
		return "", err
	}
	if !a.passwordFromPrompt() {
		return password, nil
	}

	confirm, err := a.io.ReadPassword("Confirm master password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}

func (a *App) loginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in to the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			username, err := a.io.ReadInput("Username: ")
			if err != nil {
				return fmt.Errorf("failed to read username: %w", err)
			}
			password, err := a.masterPassword("Master password: ")
			if err != nil {
				return err
			}

			if err := a.session.Login(ctx, username, password); err != nil {
				return err
			}

			a.io.Printf("✓ Logged in as %s\n", username)
			return nil
		},
	}
}

func (a *App) logoutCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out and remove local data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if _, err := a.session.SavedUsername(ctx); err != nil {
				return err
			}

			if !force {
				if err := a.unlock(ctx); err != nil {
					return err
				}
			}

			if err := a.session.Logout(ctx); err != nil {
				return err
			}
			if err := a.data.Clear(ctx); err != nil {
				return err
			}

			a.io.Println("✓ Logged out")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "remove local data without notifying the server")
	return cmd
}

func (a *App) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show login status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a.io.Printf("Server: %s\n", a.client.BaseURL())

			username, err := a.session.SavedUsername(ctx)
			if errors.Is(err, session.ErrNotLoggedIn) {
				a.io.Println("Status: not logged in")
				return nil
			}
			if err != nil {
				return err
			}

			a.io.Printf("Status: logged in as %s\n", username)

			last, err := a.data.LastReload(ctx)
			if err != nil {
				return err
			}
			if last.IsZero() {
				a.io.Println("Records: never loaded")
			} else {
				a.io.Printf("Records: last loaded %s\n", last.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}
