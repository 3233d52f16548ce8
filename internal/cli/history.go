package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/existflow/trinote/internal/model"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded snapshots",
	Long: `Every change records the state it replaced. Restore an entry to undo
back to that point; the restore itself is recorded too.

Examples:
  trinote history
  trinote history restore 0`,
	RunE: runHistory,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded snapshots",
	RunE:  runHistory,
}

var historyRestoreCmd = &cobra.Command{
	Use:   "restore [n]",
	Short: "Restore snapshot n (0 is the most recent)",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRestore,
}

var restoreForce bool

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyRestoreCmd)
	historyRestoreCmd.Flags().BoolVarP(&restoreForce, "force", "f", false, "Do not ask for confirmation")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	entries := a.board.History()
	if len(entries) == 0 {
		fmt.Println("No history yet.")
		return nil
	}

	fmt.Printf("\n%-4s  %-19s  %-8s  %s\n", "#", "WHEN", "BEFORE", "TASKS")
	fmt.Println(strings.Repeat("─", 60))
	for i, e := range entries {
		when := time.UnixMilli(e.Timestamp).Local().Format("2006-01-02 15:04:05")
		fmt.Printf("%-4d  %-19s  %-8s  %d\n", i, when, e.Label, countLive(e.Snapshot))
	}
	fmt.Println()
	return nil
}

func runHistoryRestore(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return fmt.Errorf("invalid history index %q", args[0])
	}

	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	entries := a.board.History()
	if n >= len(entries) {
		return fmt.Errorf("no history entry %d (have %d)", n, len(entries))
	}

	if !restoreForce {
		ok, err := confirm(fmt.Sprintf("Restore the board from before '%s' (%d tasks)?",
			entries[n].Label, countLive(entries[n].Snapshot)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted. Use --force to restore without asking.")
			return nil
		}
	}

	if err := a.board.Restore(n); err != nil {
		return fmt.Errorf("failed to restore: %w", err)
	}
	fmt.Printf("✓ Restored snapshot %d. Tasks: %d\n", n, len(a.board.Live()))
	return nil
}

func countLive(tasks []model.Task) int {
	n := 0
	for _, t := range tasks {
		if !t.IsDeleted() {
			n++
		}
	}
	return n
}
