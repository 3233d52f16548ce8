package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/trinote/internal/model"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Long: `Add a new task to a group.

Examples:
  trinote add "Buy groceries"
  trinote add "Plan the quarter" -g big
  trinote add Call the bank --group middle`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var addGroup string

func init() {
	addCmd.Flags().StringVarP(&addGroup, "group", "g", "today", "Group: big, middle or today")
}

func runAdd(cmd *cobra.Command, args []string) error {
	group, err := model.ParseGroup(addGroup)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	task, err := a.board.Add(strings.Join(args, " "), group)
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}

	fmt.Printf("✓ Added to [%s]: \"%s\" (%s)\n", group.Label(), task.Title, shortID(task.ID))
	return nil
}
