package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/trinote/internal/share"
	tsync "github.com/existflow/trinote/internal/sync"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the sync key",
	Long: `The sync key names the remote board this device mirrors.
Devices using the same key share one board.

Commands:
  trinote key                # Show the current key
  trinote key set <key>      # Switch to a key and pull its board
  trinote key clear          # Stop syncing
  trinote key link           # Print a share link for the current key
  trinote key open <link>    # Adopt the key carried by a share link`,
	RunE: runKeyShow,
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current key",
	RunE:  runKeyShow,
}

var keySetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Switch to a sync key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeySet,
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the sync key",
	RunE:  runKeyClear,
}

var keyLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Print a share link for the current key",
	RunE:  runKeyLink,
}

var keyOpenCmd = &cobra.Command{
	Use:   "open [link]",
	Short: "Adopt the key from a share link",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeyOpen,
}

func init() {
	keyCmd.AddCommand(keyShowCmd)
	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyClearCmd)
	keyCmd.AddCommand(keyLinkCmd)
	keyCmd.AddCommand(keyOpenCmd)
}

func runKeyShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	key := a.syncer.Key()
	if key == "" {
		fmt.Println("No sync key set. Use 'trinote key set <key>'.")
		return nil
	}
	fmt.Printf("🔑 %s\n", key)
	return nil
}

func runKeySet(cmd *cobra.Command, args []string) error {
	key, err := share.ValidateKey(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	return switchKey(cmd, a, key)
}

func runKeyOpen(cmd *cobra.Command, args []string) error {
	key, err := share.ValidateKey(share.KeyFromLink(args[0]))
	if err != nil {
		return fmt.Errorf("link has no usable #key= fragment: %w", err)
	}

	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	return switchKey(cmd, a, key)
}

func switchKey(cmd *cobra.Command, a *app, key string) error {
	err := a.syncer.SetKey(cmd.Context(), key)
	fmt.Printf("🔑 Sync key: %s\n", key)
	if err != nil {
		// The key is kept; the next sync retries the pull
		fmt.Printf("⚠️  Pull failed: %v\n", err)
		return nil
	}
	if a.remote == nil {
		fmt.Println("Cloud off: the key is saved and used once a remote is configured.")
		return nil
	}
	fmt.Printf("✓ Board merged: %d tasks\n", len(a.board.Live()))
	return nil
}

func runKeyClear(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.syncer.SetKey(cmd.Context(), ""); err != nil {
		return err
	}
	fmt.Println("✓ Sync key removed. The board stays on this device.")
	return nil
}

func runKeyLink(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	key := a.syncer.Key()
	if key == "" {
		return fmt.Errorf("%w: set one with 'trinote key set <key>'", tsync.ErrNoKey)
	}

	link, err := share.Link(cfg.ShareBaseURL, key)
	if err != nil {
		if errors.Is(err, share.ErrInvalidKey) {
			return fmt.Errorf("stored key cannot be shared: %w", err)
		}
		return err
	}
	fmt.Println(link)
	return nil
}
