// Package cli is the command-line front end: it plays the part of the UI,
// reading and changing the shared list through the list store.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dukerupert/shoplist/internal/app"
	"github.com/dukerupert/shoplist/internal/config"
	"github.com/dukerupert/shoplist/internal/logging"
	"github.com/dukerupert/shoplist/internal/settings"
)

var (
	cfg      config.Config
	prefs    settings.Settings
	instance *app.App
	openOnce sync.Once
	openErr  error
)

// setup loads configuration and settings before any subcommand runs.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(os.Getenv)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = "debug"
	}
	logging.Setup(cfg.LogLevel, cmd.ErrOrStderr())

	prefs, err = settings.Load(cfg.SettingsPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	return nil
}

// openApp connects to the list on first use and loads it.
func openApp(ctx context.Context) (*app.App, error) {
	openOnce.Do(func() {
		instance, openErr = app.New(ctx, cfg, slog.Default())
		if openErr != nil {
			return
		}
		if err := instance.Store.Load(ctx); err != nil {
			openErr = fmt.Errorf("load list: %w", err)
		}
	})
	return instance, openErr
}

// Close releases the list opened by the last command, whether or not the
// command succeeded. It waits for pending favorite writes.
func Close() {
	if instance != nil {
		instance.Close()
	}
	instance, openErr = nil, nil
	openOnce = sync.Once{}
}

func saveSettings() error {
	if err := settings.Save(cfg.SettingsPath, prefs); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// RootCmd returns the shoplist command with every subcommand attached.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "shoplist",
		Short: "Shared shopping list",
		Long: `shoplist reads and edits a shopping list shared between several people.
Changes made elsewhere show up on the next command, or live with "shoplist watch".`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(ListCmd())
	root.AddCommand(AddCmd())
	root.AddCommand(EditCmd())
	root.AddCommand(ToggleCmd())
	root.AddCommand(RemoveCmd())
	root.AddCommand(ClearCmd())
	root.AddCommand(MoveCmd())
	root.AddCommand(WatchCmd())
	root.AddCommand(FavCmd())
	root.AddCommand(SettingsCmd())
	root.AddCommand(PushCmd())
	return root
}
