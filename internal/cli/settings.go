package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/view"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change local settings",
	Long:  "Settings stay on this machine. They decide how the list is filtered, sorted and who \"me\" is.",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(prefs)
		if err != nil {
			return fmt.Errorf("encode settings: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", cfg.SettingsPath, data)
		return nil
	},
}

var settingsSortCmd = &cobra.Command{
	Use:       "sort [mode]",
	Short:     "Set the default sort order",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"manual", "name", "category", "store", "created"},
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := view.ParseSortMode(args[0])
		if err != nil {
			return err
		}
		prefs.SortOrder = mode
		if err := saveSettings(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Sorting by %s\n", mode)
		return nil
	},
}

var settingsFilterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Save the default filters",
	Long:  "Save the default filters. Flags work as on list; --all clears every filter.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, _, err := viewFromFlags(cmd)
		if err != nil {
			return err
		}
		if f.Store != "" && !f.Store.Valid() {
			return fmt.Errorf("unknown store %q", f.Store)
		}
		if f.Category != "" && !f.Category.Valid() {
			return fmt.Errorf("unknown category %q", f.Category)
		}
		prefs.Filters = f
		if err := saveSettings(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %d filter(s) active\n", f.ActiveCount())
		return nil
	},
}

var settingsUserCmd = &cobra.Command{
	Use:   "user [id]",
	Short: "Set who is using this client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, ok := model.UserByID(args[0])
		if !ok {
			return fmt.Errorf("unknown user %q", args[0])
		}
		prefs.CurrentUser = u.ID
		if err := saveSettings(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Hello %s\n", u.Name)
		return nil
	},
}

var settingsGroupCmd = &cobra.Command{
	Use:       "group [on|off]",
	Short:     "Group the list by category by default",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "on":
			prefs.GroupByCategory = true
		case "off":
			prefs.GroupByCategory = false
		default:
			return fmt.Errorf("expected on or off, got %q", args[0])
		}
		return saveSettings()
	},
}

var settingsThemeCmd = &cobra.Command{
	Use:       "theme [light|dark]",
	Short:     "Set the colour theme",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"light", "dark"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] != "light" && args[0] != "dark" {
			return fmt.Errorf("expected light or dark, got %q", args[0])
		}
		prefs.Theme = args[0]
		return saveSettings()
	},
}

func init() {
	addViewFlags(settingsFilterCmd)

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSortCmd)
	settingsCmd.AddCommand(settingsFilterCmd)
	settingsCmd.AddCommand(settingsUserCmd)
	settingsCmd.AddCommand(settingsGroupCmd)
	settingsCmd.AddCommand(settingsThemeCmd)
}

// SettingsCmd returns the settings command
func SettingsCmd() *cobra.Command {
	return settingsCmd
}
