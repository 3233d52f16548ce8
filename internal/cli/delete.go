package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [task-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Delete a task by its ID or a unique prefix of it.

Examples:
  trinote delete 3f2a
  trinote rm 3f2a --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var deleteForce bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Do not ask for confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	task, err := a.board.Resolve(args[0])
	if err != nil {
		return err
	}

	if cfg.ConfirmDelete && !deleteForce {
		ok, err := confirm(fmt.Sprintf("Delete \"%s\"?", task.Title))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted. Use --force to delete without asking.")
			return nil
		}
	}

	if _, err := a.board.Delete(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	fmt.Printf("🗑️  Deleted: %s\n", task.Title)
	return nil
}
