package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var favCmd = &cobra.Command{
	Use:   "fav",
	Short: "Manage favorites",
	Long:  "Favorites are suggestions remembered from earlier categorised items.",
}

var favListCmd = &cobra.Command{
	Use:   "list [prefix]",
	Short: "List favorites, optionally only those starting with prefix",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		if _, err := a.Favorites.Refresh(ctx); err != nil {
			return fmt.Errorf("load favorites: %w", err)
		}

		favs := a.Favorites.Matching(strings.Join(args, " "))
		if len(favs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No favorites found")
			return nil
		}
		for _, f := range favs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-24s %s\n", f.Category.Icon(), f.Name, dim.Sprint(f.Category))
		}
		return nil
	},
}

var favAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a favorite to the list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addFromFavorite(cmd, strings.Join(args, " "))
	},
}

var favRemoveCmd = &cobra.Command{
	Use:   "rm [name]",
	Short: "Forget a favorite",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		name := strings.Join(args, " ")
		if err := a.Favorites.Remove(ctx, name); err != nil {
			return fmt.Errorf("remove favorite %q: %w", name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed favorite %s\n", name)
		return nil
	},
}

func init() {
	favCmd.AddCommand(favListCmd)
	favCmd.AddCommand(favAddCmd)
	favCmd.AddCommand(favRemoveCmd)
}

// FavCmd returns the fav command
func FavCmd() *cobra.Command {
	return favCmd
}
