package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/visioncrafter/internal/ai"
	"github.com/amishk599/visioncrafter/internal/config"
	"github.com/amishk599/visioncrafter/internal/document"
	"github.com/amishk599/visioncrafter/internal/model"
	"github.com/amishk599/visioncrafter/internal/pipeline"
	"github.com/amishk599/visioncrafter/internal/session"
	"github.com/amishk599/visioncrafter/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadConfig_FallsBackToEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("VISIONCRAFTER_CONFIG", "")
	t.Setenv("JOBS_DIR", "charters")

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.JobsDir != "charters" {
		t.Errorf("JobsDir = %q, want charters", cfg.JobsDir)
	}
}

func TestLoadConfig_EnvVarPath(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("jobs_dir: from-env-path\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VISIONCRAFTER_CONFIG", path)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.JobsDir != "from-env-path" {
		t.Errorf("JobsDir = %q", cfg.JobsDir)
	}
}

func TestSetupGateway_MissingKey(t *testing.T) {
	cfg := &config.Config{}
	_, _, err := setupGateway(cfg, false)

	var cfgErr *model.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want ConfigurationError", err)
	}

	if _, name, err := setupGateway(cfg, true); err != nil || name != "dry-run" {
		t.Errorf("dry run gateway: name=%q err=%v", name, err)
	}
}

func TestSetupCost_Overrides(t *testing.T) {
	cfg := &config.Config{AI: config.AIConfig{PromptCostPer1K: 1, CompletionCostPer1K: 2}}
	cost := setupCost(cfg, "gpt-4")(model.Usage{PromptTokens: 1000, CompletionTokens: 1000})
	if cost != 3 {
		t.Errorf("cost = %v, want 3", cost)
	}
}

func TestGenerate_DryRun(t *testing.T) {
	jobsDir := t.TempDir()
	p := pipeline.New(pipeline.DefaultStages(), session.New("system"), ai.NewDryRunGateway(),
		document.NewAssembler(jobsDir), nil, discardLogger())
	p.Submit("Builds our mobile apps")

	var out bytes.Buffer
	step, err := generate(context.Background(), p, &out)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if step.Path != filepath.Join(jobsDir, "Dry Run Role.md") {
		t.Errorf("path = %q", step.Path)
	}
	for _, want := range []string{"## Job Title\nDry Run Role", "## Performance Standards\n"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestGenerate_NotEligible(t *testing.T) {
	p := pipeline.New(pipeline.DefaultStages(), session.New("system"), ai.NewDryRunGateway(),
		document.NewAssembler(t.TempDir()), nil, discardLogger())
	p.Submit("   ")

	if _, err := generate(context.Background(), p, io.Discard); err == nil {
		t.Fatal("expected error for blank description")
	}
}

func TestRecordAssembled(t *testing.T) {
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	cfg := &config.Config{JobsDir: t.TempDir(), PromptsFile: filepath.Join(t.TempDir(), "missing.json")}
	a, err := setupApp(cfg, true, discardLogger(), discardLogger())
	if err != nil {
		t.Fatalf("setupApp: %v", err)
	}
	a.store = st
	a.pipeline.Submit("Keeps the office running")

	step, err := generate(context.Background(), a.pipeline, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	a.recordAssembled(step)

	got, err := st.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Path != step.Path || got[0].Model != "dry-run" {
		t.Errorf("history = %+v", got)
	}
	if got[0].SessionID != a.pipeline.Session().ID() {
		t.Errorf("SessionID = %q", got[0].SessionID)
	}
}

func TestWriteStarter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.json")

	if ok, err := writeStarter(path, []byte("first"), false); err != nil || !ok {
		t.Fatalf("first write: ok=%v err=%v", ok, err)
	}
	if ok, err := writeStarter(path, []byte("second"), false); err != nil || ok {
		t.Fatalf("second write without force: ok=%v err=%v", ok, err)
	}
	if data, _ := os.ReadFile(path); string(data) != "first" {
		t.Errorf("content = %q, existing file was overwritten", data)
	}
	if ok, err := writeStarter(path, []byte("third"), true); err != nil || !ok {
		t.Fatalf("forced write: ok=%v err=%v", ok, err)
	}
	if data, _ := os.ReadFile(path); string(data) != "third" {
		t.Errorf("content = %q, want third", data)
	}
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, nil)
	if !strings.Contains(buf.String(), "No documents") {
		t.Errorf("empty history output = %q", buf.String())
	}

	buf.Reset()
	printHistory(&buf, []model.Transcript{
		{Title: "Data Engineer", Path: "jobs/Data Engineer.md", Tokens: 100, Cost: 0.5, CreatedAt: time.Now()},
		{Title: "Designer", Path: "jobs/Designer.md", Tokens: 50, Cost: 0.25, CreatedAt: time.Now()},
	})
	out := buf.String()
	for _, want := range []string{"Data Engineer", "jobs/Designer.md", "Total: 2 documents, 150 tokens, ~$0.75"} {
		if !strings.Contains(out, want) {
			t.Errorf("history output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintDocument(t *testing.T) {
	doc := model.Document{Title: "Chief of Staff", Sections: []model.Section{
		{Heading: "Priorities", Body: "one two three"},
	}}
	var buf bytes.Buffer
	printDocument(&buf, doc, true)
	out := buf.String()
	for _, want := range []string{"Chief of Staff", "Priorities", "(3 words)", "one two three"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("truncate = %q", got)
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent to testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restoring working directory: %v", err)
		}
	})
}
