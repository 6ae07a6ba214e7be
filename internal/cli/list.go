package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/view"
)

// addViewFlags registers the flags that narrow or reorder what is shown.
// Unset flags fall back to the saved settings.
func addViewFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("search", "s", "", "Only items whose name or notes contain this text")
	cmd.Flags().String("store", "", "Only items for this store")
	cmd.Flags().String("category", "", "Only items in this category")
	cmd.Flags().String("user", "", "Only items assigned to this user id")
	cmd.Flags().Bool("open", false, "Only items not yet bought")
	cmd.Flags().Bool("done", false, "Only items already bought")
	cmd.Flags().Bool("all", false, "Ignore saved filters")
	cmd.Flags().String("sort", "", "Sort by manual, name, category, store or created")
}

// viewFromFlags combines the saved view settings with the command's flags.
func viewFromFlags(cmd *cobra.Command) (view.Filter, view.SortMode, error) {
	f := prefs.Filters
	if all, _ := cmd.Flags().GetBool("all"); all {
		f = view.Filter{}
	}

	flags := cmd.Flags()
	if flags.Changed("search") {
		f.Search, _ = flags.GetString("search")
	}
	if flags.Changed("store") {
		s, _ := flags.GetString("store")
		f.Store = model.Store(s)
	}
	if flags.Changed("category") {
		c, _ := flags.GetString("category")
		f.Category = model.Category(c)
	}
	if flags.Changed("user") {
		f.AssignedTo, _ = flags.GetString("user")
	}
	open, _ := flags.GetBool("open")
	doneOnly, _ := flags.GetBool("done")
	switch {
	case open && doneOnly:
		return f, "", fmt.Errorf("--open and --done exclude each other")
	case open:
		f.Completed = model.Ptr(false)
	case doneOnly:
		f.Completed = model.Ptr(true)
	}

	mode := prefs.SortOrder
	if flags.Changed("sort") {
		s, _ := flags.GetString("sort")
		m, err := view.ParseSortMode(s)
		if err != nil {
			return f, "", err
		}
		mode = m
	}
	return f, mode, nil
}

// visibleFor returns the items the command's view shows, in display order.
func visibleFor(ctx context.Context, cmd *cobra.Command) ([]model.ListItem, error) {
	a, err := openApp(ctx)
	if err != nil {
		return nil, err
	}
	f, mode, err := viewFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	return a.Store.Visible(f, mode), nil
}

func printList(ctx context.Context, cmd *cobra.Command) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	f, mode, err := viewFromFlags(cmd)
	if err != nil {
		return err
	}
	group := prefs.GroupByCategory
	if cmd.Flags().Changed("group") {
		group, _ = cmd.Flags().GetBool("group")
	}
	renderList(cmd.OutOrStdout(), a.Store.Items(), a.Store.Visible(f, mode), f, group, a.Store.Status())
	return nil
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show the shopping list",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printList(cmd.Context(), cmd)
	},
}

func init() {
	addViewFlags(listCmd)
	listCmd.Flags().BoolP("group", "g", false, "Group items by category")
}

// ListCmd returns the list command
func ListCmd() *cobra.Command {
	return listCmd
}
