package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/existflow/trinote/internal/config"
	"github.com/existflow/trinote/internal/logger"
	"github.com/existflow/trinote/internal/tui"
)

var (
	logLevel   string
	logFile    string
	logConsole bool
	openLink   string

	// cfg is loaded before any command runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "trinote",
	Short: "trinote - triage tasks into Big, Middle and Today",
	Long: `trinote keeps a small task board split into three groups:
Big, Middle and Today. Boards can be mirrored to a shared remote
under a sync key and merged across devices.

Run 'trinote' without arguments to launch the interactive board.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config from file (or defaults if not exists)
		loaded, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Failed to load config, using defaults: %v\n", err)
			loaded = config.DefaultConfig()
		}
		cfg = loaded

		// Override with CLI flags if provided
		configChanged := false
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
			configChanged = true
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
			configChanged = true
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
			configChanged = true
		}

		// Save config if changed via CLI flags
		if configChanged {
			if err := cfg.Save(); err != nil {
				fmt.Fprintf(os.Stderr, "⚠️  Failed to save config: %v\n", err)
			}
		}

		logConfig := logger.DefaultConfig()
		logConfig.Level = logger.ParseLevel(cfg.LogLevel)
		logConfig.FilePath = cfg.LogFile
		logConfig.Console = cfg.LogConsole

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("trinote started", logger.F("command", cmd.Name()))
		return nil
	},

	RunE: runRoot,

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("trinote exiting", logger.F("command", cmd.Name()))
		logger.Close()
	},
}

func runRoot(cmd *cobra.Command, args []string) error {
	interactive := isInteractive() && isOutputTerminal()

	a, err := openApp(cmd.Context(), interactive)
	if err != nil {
		return err
	}
	defer a.close()

	if !interactive {
		printBoard(a.board, cfg.HideDone)
		return nil
	}

	logger.Info("Launching TUI")
	err = tui.Run(a.board, a.syncer, tui.Options{
		HideDone:      cfg.HideDone,
		ConfirmDelete: cfg.ConfirmDelete,
		ShareBaseURL:  cfg.ShareBaseURL,
	})
	if err != nil {
		logger.Error("TUI error", logger.F("error", err))
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	logger.Info("TUI exited normally")
	return nil
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")
	rootCmd.PersistentFlags().StringVar(&openLink, "link", "", "Open a share link and adopt its sync key")

	// Add subcommands
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(clearCmd)
}
