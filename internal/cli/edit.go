package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/trinote/internal/model"
)

var renameCmd = &cobra.Command{
	Use:   "rename [task-id] [title]",
	Short: "Change a task's title",
	Long: `Change a task's title. An empty title is rejected.

Examples:
  trinote rename 3f2a "Buy groceries and milk"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runRename,
}

var moveCmd = &cobra.Command{
	Use:     "move [task-id] [group]",
	Aliases: []string{"mv"},
	Short:   "Move a task to another group",
	Long: `Move a task to big, middle or today.

Examples:
  trinote move 3f2a big
  trinote mv 3f2a t`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

func runRename(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	task, err := a.board.Rename(args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}

	fmt.Printf("✓ Renamed: %s\n", task.Title)
	return nil
}

func runMove(cmd *cobra.Command, args []string) error {
	group, err := model.ParseGroup(args[1])
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	task, err := a.board.Move(args[0], group)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Moved to [%s]: %s\n", group.Label(), task.Title)
	return nil
}
