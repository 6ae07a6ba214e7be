package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/view"
)

var addCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add an item",
	Long: `Add an item to the list. Without --category the category is looked up first,
falling back to "Sonstiges" if that fails. With --fav the category of the saved
favorite of that name is used and no lookup happens.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		name := strings.Join(args, " ")

		if fav, _ := cmd.Flags().GetBool("fav"); fav {
			return addFromFavorite(cmd, name)
		}

		in := model.NewItem{Name: name, Store: prefs.DefaultStore}
		in.Quantity, _ = cmd.Flags().GetString("quantity")
		in.Notes, _ = cmd.Flags().GetString("notes")
		if c, _ := cmd.Flags().GetString("category"); c != "" {
			in.Category = model.Category(c)
		}
		if s, _ := cmd.Flags().GetString("store"); s != "" {
			in.Store = model.Store(s)
		}
		in.AssignedTo, _ = cmd.Flags().GetString("user")
		if me, _ := cmd.Flags().GetBool("me"); me {
			in.AssignedTo = prefs.CurrentUser
		}

		if in.Category == "" && strings.TrimSpace(in.Name) != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), dim.Sprint("Categorizing…"))
		}
		item, err := a.Store.AddItem(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %s (%s %s)\n", item.Name, item.Category.Icon(), item.Category)
		return nil
	},
}

// addFromFavorite adds the favorite called name (any case) with its saved
// category.
func addFromFavorite(cmd *cobra.Command, name string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	if _, err := a.Favorites.List(ctx); err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}

	var category model.Category
	for _, f := range a.Favorites.Matching(name) {
		if strings.EqualFold(f.Name, name) {
			name, category = f.Name, f.Category
			break
		}
	}
	if category == "" {
		return fmt.Errorf("no favorite named %q", name)
	}

	item, err := a.Store.AddItemFromFavorite(ctx, name, category)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %s (%s %s)\n", item.Name, item.Category.Icon(), item.Category)
	return nil
}

var editCmd = &cobra.Command{
	Use:   "edit [item]",
	Short: "Change fields of an item",
	Long:  "Change fields of an item. [item] is a position from list or an id prefix. Pass an empty value to clear quantity, notes or user.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		// Its own flags share names with the view flags, so positions
		// always refer to the saved view.
		id, err := resolveItem(a.Store.Visible(prefs.Filters, prefs.SortOrder), args[0])
		if err != nil {
			return err
		}

		var p model.ItemPatch
		flags := cmd.Flags()
		if flags.Changed("name") {
			v, _ := flags.GetString("name")
			p.Name = &v
		}
		if flags.Changed("quantity") {
			v, _ := flags.GetString("quantity")
			p.Quantity = &v
		}
		if flags.Changed("notes") {
			v, _ := flags.GetString("notes")
			p.Notes = &v
		}
		if flags.Changed("category") {
			v, _ := flags.GetString("category")
			p.Category = model.Ptr(model.Category(v))
		}
		if flags.Changed("store") {
			v, _ := flags.GetString("store")
			p.Store = model.Ptr(model.Store(v))
		}
		if flags.Changed("user") {
			v, _ := flags.GetString("user")
			p.AssignedTo = &v
		}

		item, err := a.Store.UpdateItem(ctx, id, p)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated %s\n", item.Name)
		return nil
	},
}

var toggleCmd = &cobra.Command{
	Use:     "toggle [item]...",
	Aliases: []string{"check"},
	Short:   "Mark items bought, or not bought again",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		visible, err := visibleFor(ctx, cmd)
		if err != nil {
			return err
		}
		// Resolve every argument before changing anything, since positions
		// shift once the list refreshes.
		ids := make([]string, len(args))
		for i, arg := range args {
			if ids[i], err = resolveItem(visible, arg); err != nil {
				return err
			}
		}

		a, _ := openApp(ctx)
		for _, id := range ids {
			item, err := a.Store.ToggleCompleted(ctx, id)
			if err != nil {
				return err
			}
			mark := "[ ]"
			if item.Completed {
				mark = done.Sprint("[x]")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, item.Name)
		}
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:     "rm [item]",
	Aliases: []string{"delete"},
	Short:   "Delete an item",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		visible, err := visibleFor(ctx, cmd)
		if err != nil {
			return err
		}
		id, err := resolveItem(visible, args[0])
		if err != nil {
			return err
		}

		a, _ := openApp(ctx)
		if err := a.Store.DeleteItem(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Deleted")
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every bought item",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		n, err := a.Store.RemovePurchasedItems(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing bought yet")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d bought item(s)\n", n)
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move [item] [position]",
	Short: "Move an item to a new position",
	Long:  "Move an item to a new position. Only possible in manual sort order with no filters active.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		f, mode, err := viewFromFlags(cmd)
		if err != nil {
			return err
		}
		all := a.Store.Items()
		visible := a.Store.Visible(f, mode)
		if !view.CanReorder(mode, len(visible), len(all)) {
			return fmt.Errorf("items can only be moved in manual order with no filters active (try --all --sort manual)")
		}

		id, err := resolveItem(visible, args[0])
		if err != nil {
			return err
		}
		to, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("position must be a number: %w", err)
		}
		ids, err := moveTo(visible, id, to)
		if err != nil {
			return err
		}

		if err := a.Store.ReorderItems(ctx, ids); err != nil {
			return err
		}
		return printList(ctx, cmd)
	},
}

func itemFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("quantity", "q", "", "Quantity, e.g. \"2 l\"")
	cmd.Flags().StringP("notes", "n", "", "Free text notes")
	cmd.Flags().StringP("category", "c", "", "Category")
	cmd.Flags().String("store", "", "Store")
	cmd.Flags().StringP("user", "u", "", "Assign to this user id")
}

func init() {
	itemFlags(addCmd)
	addCmd.Flags().Bool("me", false, "Assign to the current user")
	addCmd.Flags().Bool("fav", false, "Add a saved favorite by name")

	itemFlags(editCmd)
	editCmd.Flags().String("name", "", "New name")

	// Positions refer to the list as shown with the same view flags.
	addViewFlags(toggleCmd)
	addViewFlags(removeCmd)
	addViewFlags(moveCmd)
	moveCmd.Flags().BoolP("group", "g", false, "Group items by category")
}

func AddCmd() *cobra.Command    { return addCmd }
func EditCmd() *cobra.Command   { return editCmd }
func ToggleCmd() *cobra.Command { return toggleCmd }
func RemoveCmd() *cobra.Command { return removeCmd }
func ClearCmd() *cobra.Command  { return clearCmd }
func MoveCmd() *cobra.Command   { return moveCmd }
