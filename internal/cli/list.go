package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/trinote/internal/board"
	"github.com/existflow/trinote/internal/model"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks by group.

Examples:
  trinote list
  trinote list -g today
  trinote list --hide-done
  trinote list --json`,
	RunE: runList,
}

var (
	listGroup    string
	listHideDone bool
	listJSON     bool
	listSync     bool
)

func init() {
	listCmd.Flags().StringVarP(&listGroup, "group", "g", "", "Only show one group")
	listCmd.Flags().BoolVar(&listHideDone, "hide-done", false, "Hide completed tasks")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print tasks as JSON")
	listCmd.Flags().BoolVarP(&listSync, "sync", "s", false, "Pull from the remote before listing")
}

func runList(cmd *cobra.Command, args []string) error {
	groups := model.Groups()
	if listGroup != "" {
		g, err := model.ParseGroup(listGroup)
		if err != nil {
			return err
		}
		groups = []model.Group{g}
	}

	hideDone := cfg.HideDone
	if cmd.Flags().Changed("hide-done") {
		hideDone = listHideDone
	}

	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	if listSync {
		fmt.Fprintln(os.Stderr, "🔄 Pulling...")
		if err := a.syncer.Pull(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Pull failed: %v\n", err)
		}
	}

	if listJSON {
		tasks := []model.Task{}
		for _, g := range groups {
			tasks = append(tasks, a.board.Group(g, hideDone)...)
		}
		out, err := json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	printGroups(a.board, groups, hideDone)
	return nil
}

// printBoard prints every group
func printBoard(b *board.Board, hideDone bool) {
	printGroups(b, model.Groups(), hideDone)
}

func printGroups(b *board.Board, groups []model.Group, hideDone bool) {
	counts := b.Counts()
	for _, g := range groups {
		tasks := b.Group(g, hideDone)

		fmt.Printf("\n📌 %s (%d)\n", g.Label(), counts[g])
		fmt.Println(strings.Repeat("─", 60))
		if len(tasks) == 0 {
			fmt.Println("  (empty)")
			continue
		}
		for _, t := range tasks {
			printTask(t)
		}
	}
	fmt.Println()
}

func printTask(t model.Task) {
	icon := "[ ]"
	if t.Done {
		icon = "[x]"
	}

	// Truncate title if too long
	title := t.Title
	if r := []rune(title); len(r) > 48 {
		title = string(r[:45]) + "..."
	}

	fmt.Printf("  %s  %-8s  %s\n", icon, shortID(t.ID), title)
}

// shortID returns the first 8 characters of an id
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
