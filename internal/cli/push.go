package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dukerupert/shoplist/internal/push"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Web Push setup",
}

var pushKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate a VAPID key pair for the push backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pub, priv, err := push.GenerateVAPIDKeys()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "VAPID_PUBLIC_KEY=%s\nVAPID_PRIVATE_KEY=%s\n", pub, priv)
		return nil
	},
}

var pushRegisterCmd = &cobra.Command{
	Use:   "register [subscription.json]",
	Short: "Register a push subscription with the list API",
	Long:  "Register a browser push subscription (the JSON of PushSubscription.toJSON()). Reads stdin when no file or \"-\" is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.APIURL == "" {
			return fmt.Errorf("push registration needs SHOPLIST_API_URL")
		}

		var (
			data []byte
			err  error
		)
		if len(args) == 0 || args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read subscription: %w", err)
		}

		sub, err := push.ParseSubscription(data)
		if err != nil {
			return err
		}
		if err := push.NewRegistrar(cfg.APIURL).Save(cmd.Context(), sub); err != nil {
			return fmt.Errorf("push notifications could not be enabled: %w", err)
		}

		prefs.Notifications = true
		if err := saveSettings(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Push notifications enabled")
		return nil
	},
}

func init() {
	pushCmd.AddCommand(pushKeysCmd)
	pushCmd.AddCommand(pushRegisterCmd)
}

// PushCmd returns the push command
func PushCmd() *cobra.Command {
	return pushCmd
}
