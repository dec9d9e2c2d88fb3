package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/visioncrafter/internal/tui"
)

var craftCmd = &cobra.Command{
	Use:   "craft",
	Short: "Craft a job charter interactively (TUI)",
	Long:  "Opens the crafting screen: describe the role, then watch each section stream in.",
	Args:  cobra.NoArgs,
	RunE:  runCraft,
}

func init() {
	rootCmd.AddCommand(craftCmd)
}

func runCraft(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, os.Stderr)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	// The TUI owns the terminal; any log output corrupts the alt-screen.
	silentLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := setupApp(cfg, dryRun, silentLogger, silentLogger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		return err
	}
	defer a.Close()

	return tui.Run(a.pipeline, a.recordAssembled)
}
