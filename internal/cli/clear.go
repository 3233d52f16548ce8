package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every task",
	Long: `Delete every task on the board. The previous state stays in the
history, so 'trinote history restore 0' undoes a clear.

With --remote the board stored under the sync key is removed as well.`,
	RunE: runClear,
}

var (
	clearRemote bool
	clearForce  bool
)

func init() {
	clearCmd.Flags().BoolVar(&clearRemote, "remote", false, "Also delete the remote board")
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "Do not ask for confirmation")
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearForce {
		ok, err := confirm("Delete every task?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted. Use --force to clear without asking.")
			return nil
		}
	}

	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Println("🧹 Clearing local data...")
	if err := a.board.Clear(); err != nil {
		return fmt.Errorf("failed to clear local data: %w", err)
	}
	fmt.Println("Local data cleared.")

	if !clearRemote {
		return nil
	}

	fmt.Println("🌐 Clearing remote data...")
	if err := a.syncer.ClearRemote(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear remote data: %w", err)
	}
	fmt.Println("Remote data cleared.")
	return nil
}
