package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/amishk599/visioncrafter/internal/document"
	"github.com/amishk599/visioncrafter/internal/model"
)

var showFull bool

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Summarize a crafted document",
	Long:  "Parses a job charter written by VisionCrafter and prints its title and sections.",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showFull, "full", false, "print every section body, not just the outline")
	rootCmd.AddCommand(showCmd)
}

var (
	showTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	showHeadingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	showMetaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func runShow(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	doc, err := document.Parse(string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	printDocument(cmd.OutOrStdout(), doc, showFull)
	return nil
}

func printDocument(w io.Writer, doc model.Document, full bool) {
	fmt.Fprintln(w, showTitleStyle.Render(doc.Title))
	fmt.Fprintln(w)
	for _, s := range doc.Sections {
		words := len(strings.Fields(s.Body))
		fmt.Fprintf(w, "%s %s\n", showHeadingStyle.Render(s.Heading), showMetaStyle.Render(fmt.Sprintf("(%d words)", words)))
		if full {
			fmt.Fprintln(w, s.Body)
			fmt.Fprintln(w)
		}
	}
}
