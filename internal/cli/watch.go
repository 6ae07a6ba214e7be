package cli

import (
	"fmt"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the list and keep it current until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		if _, _, err := viewFromFlags(cmd); err != nil {
			return err
		}

		var mu sync.Mutex
		redraw := func() {
			mu.Lock()
			defer mu.Unlock()
			if !color.NoColor {
				fmt.Fprint(cmd.OutOrStdout(), "\033[H\033[2J")
			}
			printList(ctx, cmd)
		}
		unsubscribe := a.Store.OnChange(redraw)
		defer unsubscribe()
		redraw()

		return a.Store.Watch(ctx, a.Feed)
	},
}

func init() {
	addViewFlags(watchCmd)
	watchCmd.Flags().BoolP("group", "g", false, "Group items by category")
}

// WatchCmd returns the watch command
func WatchCmd() *cobra.Command {
	return watchCmd
}
