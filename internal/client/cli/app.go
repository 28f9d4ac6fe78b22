// Package cli реализует команды консольного клиента WealthVault.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/wealthvault/internal/client/api"
	"github.com/iudanet/wealthvault/internal/client/auth"
	"github.com/iudanet/wealthvault/internal/client/data"
	"github.com/iudanet/wealthvault/internal/client/iocli"
	"github.com/iudanet/wealthvault/internal/client/session"
	"github.com/iudanet/wealthvault/internal/client/storage/boltdb"
)

// PasswordEnv переменная окружения с master password
const PasswordEnv = "WEALTHVAULT_MASTER_PASSWORD"

// Options глобальные флаги клиента
type Options struct {
	ServerURL          string
	DBPath             string
	MasterPassword     string
	MasterPasswordFile string
}

// App зависимости команд. Хранилище открывается перед выполнением команды.
type App struct {
	io      iocli.IO
	logger  *slog.Logger
	opts    Options
	store   *boltdb.Storage
	client  *api.Client
	session *session.Session
	data    *data.Service
}

// NewApp creates the client application
func NewApp(io iocli.IO, logger *slog.Logger) *App {
	return &App{
		io:     io,
		logger: logger,
		opts: Options{
			ServerURL: "http://localhost:8080",
			DBPath:    "wealthvault-client.db",
		},
	}
}

// Command builds the root command with all subcommands
func (a *App) Command(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "wealthvault",
		Short:         "WealthVault client: insurance and investment policy records",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.ServerURL, "server", a.opts.ServerURL, "server URL")
	flags.StringVar(&a.opts.DBPath, "db", a.opts.DBPath, "path to local database")
	flags.StringVar(&a.opts.MasterPassword, "master-password", "", "master password (not recommended, use "+PasswordEnv+" or a file)")
	flags.StringVar(&a.opts.MasterPasswordFile, "master-password-file", "", "path to file containing master password")

	root.AddCommand(
		a.registerCommand(),
		a.loginCommand(),
		a.logoutCommand(),
		a.statusCommand(),
		a.listCommand(),
		a.timelineCommand(),
		a.showCommand(),
		a.addCommand(),
		a.editCommand(),
		a.renewCommand(),
		a.typesCommand(),
		a.shareCommand(),
		a.guardianCommand(),
		a.uploadCommand(),
	)

	return root
}

// open открывает локальное хранилище и собирает сервисы
func (a *App) open(ctx context.Context) error {
	if a.store != nil {
		return nil
	}

	store, err := boltdb.New(ctx, a.opts.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	a.store = store
	a.client = api.NewClient(a.opts.ServerURL)
	a.session = session.New(a.logger, auth.NewService(a.client), auth.NewTokenStore(store))
	a.data = data.NewService(a.logger, a.client, a.session, store, store)
	return nil
}

// Close releases the local database
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// unlock восстанавливает сохраненную сессию; нужен master password
func (a *App) unlock(ctx context.Context) error {
	username, err := a.session.SavedUsername(ctx)
	if err != nil {
		return err
	}

	password, err := a.masterPassword(fmt.Sprintf("Master password for %s: ", username))
	if err != nil {
		return err
	}

	return a.session.Unlock(ctx, password)
}

// masterPassword reads master password with priority:
// 1. Environment variable WEALTHVAULT_MASTER_PASSWORD
// 2. File from --master-password-file
// 3. Flag --master-password
// 4. Interactive prompt
func (a *App) masterPassword(prompt string) (string, error) {
	if p := os.Getenv(PasswordEnv); p != "" {
		return p, nil
	}

	if a.opts.MasterPasswordFile != "" {
		content, err := os.ReadFile(a.opts.MasterPasswordFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		// Убираем trailing newline
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", errors.New("password file is empty")
		}
		return password, nil
	}

	if a.opts.MasterPassword != "" {
		return a.opts.MasterPassword, nil
	}

	password, err := a.io.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	return password, nil
}

// passwordFromPrompt сообщает, будет ли пароль запрошен интерактивно
func (a *App) passwordFromPrompt() bool {
	return os.Getenv(PasswordEnv) == "" && a.opts.MasterPasswordFile == "" && a.opts.MasterPassword == ""
}

// printErrors выводит ошибки валидации по полям
func (a *App) printErrors(fields map[string]string) {
	a.io.Println("Please fix the following fields:")
	for _, name := range sortedKeys(fields) {
		a.io.Printf("  %s: %s\n", name, fields[name])
	}
}
