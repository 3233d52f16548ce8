package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/existflow/trinote/internal/config"
	"github.com/existflow/trinote/internal/remote"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync tasks with the remote",
	Long: `Merge the local board with the board stored under the sync key.

Commands:
  trinote sync               # Pull, merge and push
  trinote sync pull          # Merge the remote board into the local one
  trinote sync push          # Upload the local board
  trinote sync status        # Show remote settings and reachability
  trinote sync passphrase    # Seal remote documents with a passphrase`,
	RunE: runSync,
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Merge the remote board into the local one",
	RunE:  runSyncPull,
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the local board",
	RunE:  runSyncPush,
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	RunE:  runSyncStatus,
}

var syncPassphraseCmd = &cobra.Command{
	Use:   "passphrase",
	Short: "Set or clear the passphrase sealing remote documents",
	Long: `Remote documents are sealed with AES-GCM when a passphrase is set.
Every device sharing a key needs the same passphrase.`,
	RunE: runSyncPassphrase,
}

var passphraseClear bool

func init() {
	syncCmd.AddCommand(syncPullCmd)
	syncCmd.AddCommand(syncPushCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncPassphraseCmd)

	syncPassphraseCmd.Flags().BoolVar(&passphraseClear, "clear", false, "Remove the passphrase")
}

func runSync(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Println("🔄 Synchronizing...")
	if err := a.syncer.Sync(cmd.Context()); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Printf("✓ Sync complete! %d tasks on [%s]\n", len(a.board.Live()), a.syncer.Key())
	return nil
}

func runSyncPull(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	before := len(a.board.Live())
	fmt.Println("⬇️  Pulling...")
	if err := a.syncer.Pull(cmd.Context()); err != nil {
		return fmt.Errorf("pull failed: %w", err)
	}

	fmt.Printf("✓ Pulled. Tasks: %d → %d\n", before, len(a.board.Live()))
	return nil
}

func runSyncPush(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Println("⬆️  Pushing...")
	if err := a.syncer.Push(cmd.Context()); err != nil {
		return fmt.Errorf("push failed: %w", err)
	}

	fmt.Printf("✓ Pushed %d tasks to [%s]\n", len(a.board.Live()), a.syncer.Key())
	return nil
}

func runSyncStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	if a.remote == nil {
		fmt.Println("Remote:    cloud off")
		fmt.Println("\nConfigure remote.url (or remote.driver: postgres and remote.database_url)")
		fmt.Println("in the config file, or set TRINOTE_REMOTE_URL.")
		return nil
	}

	switch cfg.Remote.Driver {
	case config.DriverPostgres:
		fmt.Println("Remote:    postgres (direct)")
	default:
		fmt.Printf("Remote:    %s\n", cfg.Remote.URL)
	}

	key := a.syncer.Key()
	if key == "" {
		key = "(none, run 'trinote key set <key>')"
	}
	fmt.Printf("Sync key:  %s\n", key)

	if a.remote.Sealed() {
		fmt.Println("Sealed:    yes")
	} else {
		fmt.Println("Sealed:    no")
	}

	if err := a.remote.Ping(cmd.Context()); err != nil {
		fmt.Printf("Status:    ⚠️  unreachable (%v)\n", err)
		return nil
	}
	fmt.Println("Status:    ✓ reachable")

	if a.syncer.Key() == "" {
		return nil
	}
	if err := a.syncer.Pull(cmd.Context()); err != nil {
		if errors.Is(err, remote.ErrSealed) || errors.Is(err, remote.ErrDecrypt) {
			fmt.Printf("Board:     🔒 %v\n", err)
			return nil
		}
		fmt.Printf("Board:     ⚠️  %v\n", err)
		return nil
	}
	fmt.Printf("Board:     ✓ %d tasks, checked %s\n", len(a.board.Live()), a.syncer.LastSync().Format(time.Kitchen))
	return nil
}

func runSyncPassphrase(cmd *cobra.Command, args []string) error {
	if passphraseClear {
		cfg.Remote.Passphrase = ""
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Println("✓ Passphrase removed. New pushes are stored unsealed.")
		return nil
	}

	if !isInteractive() {
		return fmt.Errorf("a terminal is required to enter a passphrase")
	}

	pass, err := readSecret("Passphrase: ")
	if err != nil {
		return err
	}
	if len(pass) < 8 {
		return fmt.Errorf("passphrase must be at least 8 characters")
	}
	again, err := readSecret("Repeat passphrase: ")
	if err != nil {
		return err
	}
	if pass != again {
		return fmt.Errorf("passphrases do not match")
	}

	cfg.Remote.Passphrase = pass
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println("✓ Passphrase saved.")
	fmt.Println("\n⚠️  IMPORTANT: Every device sharing this key needs the same passphrase.")
	return nil
}
