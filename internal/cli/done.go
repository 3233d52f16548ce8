package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Toggle a task's completion",
	Long: `Mark a task as completed, or reopen it if it is already done.
Any unique prefix of the id works.

Examples:
  trinote done 3f2a`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

func runDone(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	task, err := a.board.Toggle(args[0])
	if err != nil {
		return err
	}

	if task.Done {
		fmt.Printf("✓ Completed: %s\n", task.Title)
	} else {
		fmt.Printf("○ Reopened: %s\n", task.Title)
	}
	return nil
}
