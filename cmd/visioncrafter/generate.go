package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/visioncrafter/internal/pipeline"
)

var generateCmd = &cobra.Command{
	Use:   "generate [description]",
	Short: "Craft a job charter without the TUI",
	Long: "Runs every stage for the given description, streaming the answers to stdout, " +
		"then writes the document and prints its path. Reads the description from stdin when no argument is given.",
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, os.Stderr)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	seed := strings.Join(args, " ")
	if len(args) == 0 {
		seed, err = readSeed(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(seed) == "" {
		return errors.New("a job description is required")
	}

	a, err := setupApp(cfg, dryRun, logger, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	a.pipeline.Submit(seed)
	step, err := generate(ctx, a.pipeline, out)
	if err != nil {
		logger.Error("generation failed", "session_id", a.pipeline.Session().ID(), "error", err)
		return err
	}
	a.recordAssembled(step)

	state := a.pipeline.Session()
	fmt.Fprintf(out, "\nSaved %s (%d tokens, ~$%.4f)\n", step.Path, state.Tokens(), state.Cost())
	return nil
}

// generate runs the pipeline to completion, writing each stage heading and
// its streamed answer to out.
func generate(ctx context.Context, p *pipeline.Pipeline, out io.Writer) (pipeline.Step, error) {
	stages := p.Stages()
	if pr := p.Progress(); pr.Stage >= 0 {
		fmt.Fprintf(out, "## %s\n", stages[pr.Stage].Heading)
	}

	step, err := p.Run(ctx,
		func(tok string) { fmt.Fprint(out, tok) },
		func(s pipeline.Step) {
			if s.Kind != pipeline.StepStage {
				return
			}
			fmt.Fprint(out, "\n\n")
			if pr := p.Progress(); pr.Stage >= 0 {
				fmt.Fprintf(out, "## %s\n", stages[pr.Stage].Heading)
			}
		},
	)
	if err != nil {
		return step, err
	}
	if step.Kind != pipeline.StepAssembled {
		return step, fmt.Errorf("pipeline stopped: %s", p.Progress().Status)
	}
	return step, nil
}

func readSeed(r io.Reader) (string, error) {
	var b strings.Builder
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		b.WriteString(sc.Text())
		b.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("read description: %w", err)
	}
	return strings.TrimSpace(b.String()), nil
}
