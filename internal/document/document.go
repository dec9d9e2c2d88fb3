// Package document renders a finished session as Markdown, parses it back,
// and writes it under the jobs directory.
package document

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amishk599/visioncrafter/internal/model"
)

const (
	// InitialHeading titles the section holding the seed description.
	InitialHeading = "Initial Description"
	titlePrefix    = "Job Title: "
)

// ErrNoTitle is returned by Parse when the text lacks a top-level heading.
var ErrNoTitle = errors.New("document: missing top-level title heading")

// Build assembles a document: the seed section first, then sections in order.
func Build(title, seed string, sections []model.Section) model.Document {
	all := make([]model.Section, 0, len(sections)+1)
	all = append(all, model.Section{Heading: InitialHeading, Body: seed})
	all = append(all, sections...)
	return model.Document{Title: title, Sections: all}
}

// Render serializes doc as Markdown: "# Job Title: <title>" followed by one
// "## <heading>" and body per section. Headings inside bodies are demoted two
// levels so they nest beneath their section, and a code fence left open by a
// body is closed before the next section starts.
func Render(doc model.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s%s\n", titlePrefix, oneLine(doc.Title))
	for _, s := range doc.Sections {
		fmt.Fprintf(&b, "\n## %s\n\n", oneLine(s.Heading))
		body := closeFence(strings.TrimSpace(demoteHeadings(s.Body)))
		if body != "" {
			b.WriteString(body)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Parse reads a document produced by Render.
func Parse(text string) (model.Document, error) {
	var (
		doc     model.Document
		current *model.Section
		body    []string
		titled  bool
		fenced  bool
	)
	flush := func() {
		if current != nil {
			current.Body = strings.TrimSpace(strings.Join(body, "\n"))
			doc.Sections = append(doc.Sections, *current)
		}
		body = body[:0]
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if isFence(line) {
			fenced = !fenced
		}
		switch {
		case fenced || isFence(line):
			body = append(body, line)
		case !titled && strings.HasPrefix(line, "# "):
			title := strings.TrimPrefix(strings.TrimSpace(line[2:]), strings.TrimSpace(titlePrefix))
			doc.Title = strings.TrimSpace(title)
			titled = true
		case titled && strings.HasPrefix(line, "## "):
			flush()
			current = &model.Section{Heading: strings.TrimSpace(line[3:])}
		default:
			body = append(body, line)
		}
	}
	flush()

	if !titled {
		return model.Document{}, ErrNoTitle
	}
	return doc, nil
}

// demoteHeadings pushes ATX headings down two levels (capped at six),
// leaving fenced code untouched.
func demoteHeadings(body string) string {
	lines := strings.Split(body, "\n")
	fenced := false
	for i, line := range lines {
		if isFence(line) {
			fenced = !fenced
			continue
		}
		if fenced {
			continue
		}
		level := headingLevel(line)
		if level == 0 {
			continue
		}
		newLevel := min(level+2, 6)
		lines[i] = strings.Repeat("#", newLevel) + line[level:]
	}
	return strings.Join(lines, "\n")
}

// headingLevel returns the ATX heading level of line, or 0.
func headingLevel(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n > 6 {
		return 0
	}
	if n < len(line) && line[n] != ' ' && line[n] != '\t' {
		return 0
	}
	return n
}

// closeFence appends a closing fence when body ends inside fenced code.
func closeFence(body string) string {
	open := ""
	for _, line := range strings.Split(body, "\n") {
		if !isFence(line) {
			continue
		}
		if open == "" {
			open = fenceMarker(line)
		} else {
			open = ""
		}
	}
	if open == "" {
		return body
	}
	return body + "\n" + open
}

// fenceMarker returns the run of backticks or tildes that opens a fence line.
func fenceMarker(line string) string {
	t := strings.TrimSpace(line)
	n := 0
	for n < len(t) && t[n] == t[0] {
		n++
	}
	return t[:n]
}

func isFence(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "```") || strings.HasPrefix(t, "~~~")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
