package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/existflow/trinote/internal/history"
	"github.com/existflow/trinote/internal/transfer"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tasks to a JSON file",
	Long: `Write every task, including deletions, to a JSON file.

Examples:
  trinote export                     # tri-notes-<timestamp>.json
  trinote export -o backup.json
  trinote export -o -                # stdout`,
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import tasks from a JSON file",
	Long: `Merge tasks from a JSON export into the board. Newer versions win.
With --replace the board becomes exactly the file's tasks.

Examples:
  trinote import backup.json
  trinote import backup.json --replace
  cat backup.json | trinote import -`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var (
	exportOutput  string
	importReplace bool
	importForce   bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file, - for stdout")
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "Replace the board instead of merging")
	importCmd.Flags().BoolVarP(&importForce, "force", "f", false, "Do not ask for confirmation")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	now := time.Now()
	tasks := a.board.Tasks()

	if exportOutput == "-" {
		return transfer.Export(os.Stdout, tasks, now)
	}

	path := exportOutput
	if path == "" {
		path = transfer.FileName(now)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := transfer.Export(f, tasks, now); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	fmt.Printf("📁 Exported %d tasks to %s\n", len(tasks), path)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	var r io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open import file: %w", err)
		}
		defer f.Close()
		r = f
	}

	tasks, err := transfer.Import(r, time.Now(), uuid.NewString)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if importReplace && !importForce {
		ok, err := confirm(fmt.Sprintf("Replace the board with %d imported tasks?", len(tasks)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted. Use --force to replace without asking.")
			return nil
		}
	}

	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	if importReplace {
		if err := a.board.Replace(tasks, history.LabelImport); err != nil {
			return fmt.Errorf("failed to replace board: %w", err)
		}
		fmt.Printf("📁 Replaced board with %d tasks\n", len(tasks))
		return nil
	}

	if a.board.Merge(tasks, history.LabelImport) {
		fmt.Printf("📁 Merged %d tasks\n", len(tasks))
	} else {
		fmt.Println("📁 Nothing new to import")
	}
	return nil
}
