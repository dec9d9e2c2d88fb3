package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/amishk599/visioncrafter/internal/model"
	"github.com/amishk599/visioncrafter/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously crafted documents",
	Long:  "Reads the transcript history and prints the most recent documents first.",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := store.NewSQLiteStore(cfg.StorePath)
	if err != nil {
		return err
	}
	defer st.Close()

	transcripts, err := st.List(historyLimit)
	if err != nil {
		return err
	}
	printHistory(cmd.OutOrStdout(), transcripts)
	return nil
}

var historyHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))

func printHistory(w io.Writer, transcripts []model.Transcript) {
	if len(transcripts) == 0 {
		fmt.Fprintln(w, "No documents crafted yet.")
		return
	}

	fmt.Fprintln(w, historyHeaderStyle.Render(fmt.Sprintf("%-17s %-35s %8s %9s  %s", "Created", "Title", "Tokens", "Cost", "Path")))
	fmt.Fprintln(w, strings.Repeat("─", 90))

	var tokens int
	var cost float64
	for _, t := range transcripts {
		fmt.Fprintf(w, "%-17s %-35s %8d %9s  %s\n",
			t.CreatedAt.Local().Format("2006-01-02 15:04"),
			truncate(t.Title, 35),
			t.Tokens,
			fmt.Sprintf("$%.4f", t.Cost),
			t.Path,
		)
		tokens += t.Tokens
		cost += t.Cost
	}
	fmt.Fprintf(w, "\nTotal: %d documents, %d tokens, ~$%.2f\n", len(transcripts), tokens, cost)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
