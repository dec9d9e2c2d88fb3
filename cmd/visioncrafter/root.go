package main

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/visioncrafter/internal/ai"
	"github.com/amishk599/visioncrafter/internal/config"
	"github.com/amishk599/visioncrafter/internal/document"
	"github.com/amishk599/visioncrafter/internal/model"
	"github.com/amishk599/visioncrafter/internal/notifier"
	"github.com/amishk599/visioncrafter/internal/pipeline"
	"github.com/amishk599/visioncrafter/internal/session"
	"github.com/amishk599/visioncrafter/internal/store"
)

const defaultConfigFile = "visioncrafter.yaml"

var (
	cfgPath string
	debug   bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "visioncrafter",
	Short: "Craft job charters with a language model",
	Long:  "VisionCrafter turns a short description of a role into a complete job charter, one question at a time.",
	// Default to `craft` so that `visioncrafter` with no args opens the TUI.
	RunE:         runCraft,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: VISIONCRAFTER_CONFIG env var or ./visioncrafter.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "answer locally with canned text; nothing is sent or recorded")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > VISIONCRAFTER_CONFIG env var > "./visioncrafter.yaml" > environment only.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv("VISIONCRAFTER_CONFIG")
	}
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err != nil {
			return config.FromEnv()
		}
		path = defaultConfigFile
	}
	return config.Load(path)
}

// setupLogger logs to w; generate keeps stdout for the document itself.
func setupLogger(dbg bool, w io.Writer) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// setupGateway returns the model backend and the model name recorded with
// each transcript. Outside dry-run a missing API key fails here, before any
// network I/O.
func setupGateway(cfg *config.Config, dry bool) (model.ModelGateway, string, error) {
	if dry {
		return ai.NewDryRunGateway(), "dry-run", nil
	}
	if err := cfg.RequireCredential(); err != nil {
		return nil, "", err
	}
	httpClient := &http.Client{Timeout: cfg.AI.Timeout}
	provider := ai.NewOpenAIProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Temperature, httpClient)
	return ai.NewThrottledGateway(provider, cfg.AI.MinDelay), provider.Model(), nil
}

// setupCost prices usage at the built-in rate for modelName unless the
// config overrides it.
func setupCost(cfg *config.Config, modelName string) pipeline.CostFunc {
	pricing := ai.PricingFor(modelName)
	if cfg.AI.PromptCostPer1K > 0 {
		pricing.PromptPer1K = cfg.AI.PromptCostPer1K
	}
	if cfg.AI.CompletionCostPer1K > 0 {
		pricing.CompletionPer1K = cfg.AI.CompletionCostPer1K
	}
	return pricing.Cost
}

func setupPrompts(cfg *config.Config, dry bool, logger *slog.Logger) (config.Prompts, error) {
	prompts, err := config.LoadPrompts(cfg.PromptsFile)
	if err == nil {
		return prompts, nil
	}
	if dry && errors.Is(err, os.ErrNotExist) {
		logger.Warn("prompts file not found, using bundled prompts", "path", cfg.PromptsFile)
		return config.DefaultPrompts(), nil
	}
	return config.Prompts{}, err
}

func setupStore(cfg *config.Config, dry bool) (model.TranscriptStore, error) {
	if dry {
		return store.NewNopStore(), nil
	}
	return store.NewSQLiteStore(cfg.StorePath)
}

// app is everything one crafting session needs.
type app struct {
	pipeline *pipeline.Pipeline
	store    model.TranscriptStore
	notifier model.Notifier
	model    string
	logger   *slog.Logger
}

// setupApp wires a pipeline from configuration. pipeLogger receives the
// per-stage log lines; the TUI passes a discard logger.
func setupApp(cfg *config.Config, dry bool, logger, pipeLogger *slog.Logger) (*app, error) {
	gateway, modelName, err := setupGateway(cfg, dry)
	if err != nil {
		return nil, err
	}
	prompts, err := setupPrompts(cfg, dry, logger)
	if err != nil {
		return nil, err
	}
	stages, err := pipeline.NewStages(prompts.Stages)
	if err != nil {
		return nil, &model.ConfigurationError{Field: "prompts_file", Err: err}
	}
	st, err := setupStore(cfg, dry)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	p := pipeline.New(
		stages,
		session.New(prompts.System),
		gateway,
		document.NewAssembler(cfg.JobsDir),
		setupCost(cfg, modelName),
		pipeLogger,
	)
	return &app{
		pipeline: p,
		store:    st,
		notifier: setupNotifier(cfg, httpClient, pipeLogger),
		model:    modelName,
		logger:   logger,
	}, nil
}

// recordAssembled stores and announces a written document. Failures are
// logged only; the document is already on disk.
func (a *app) recordAssembled(step pipeline.Step) {
	state := a.pipeline.Session()
	t := model.Transcript{
		SessionID: state.ID(),
		Title:     step.Document.Title,
		Path:      step.Path,
		Model:     a.model,
		Tokens:    state.Tokens(),
		Cost:      state.Cost(),
		CreatedAt: time.Now(),
	}
	if err := a.store.Record(t); err != nil {
		a.logger.Error("failed to record transcript", "path", t.Path, "error", err)
	}
	if err := a.notifier.Notify(t); err != nil {
		a.logger.Error("notification failed", "path", t.Path, "error", err)
	}
}

func (a *app) Close() error {
	return a.store.Close()
}
