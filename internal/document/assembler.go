package document

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/amishk599/visioncrafter/internal/model"
)

const maxTitleRunes = 120

// Assembler writes rendered documents into a directory, one file per title.
type Assembler struct {
	dir string
}

// NewAssembler returns an Assembler that writes into dir, creating it on demand.
func NewAssembler(dir string) *Assembler {
	return &Assembler{dir: dir}
}

// Dir returns the output directory.
func (a *Assembler) Dir() string { return a.dir }

// Assemble renders doc and writes it to {dir}/{title}.md. The title is
// sanitized first; an existing file is never overwritten, a numeric suffix
// is added instead.
func (a *Assembler) Assemble(doc model.Document) (string, string, error) {
	markdown := Render(doc)

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", "", &model.AssemblyError{Path: a.dir, Err: err}
	}

	stem := SanitizeTitle(doc.Title)
	for n := 1; ; n++ {
		name := stem
		if n > 1 {
			name = fmt.Sprintf("%s (%d)", stem, n)
		}
		path := filepath.Join(a.dir, name+".md")

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", "", &model.AssemblyError{Path: path, Err: err}
		}
		if _, err := f.WriteString(markdown); err != nil {
			f.Close()
			return "", "", &model.AssemblyError{Path: path, Err: err}
		}
		if err := f.Close(); err != nil {
			return "", "", &model.AssemblyError{Path: path, Err: err}
		}
		return markdown, path, nil
	}
}

// SanitizeTitle turns a model-produced title into a safe file name stem.
// Path separators, reserved and control characters become "-", whitespace
// collapses, and leading/trailing dots and spaces are dropped.
func SanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r == utf8.RuneError:
			continue
		case strings.ContainsRune(`/\:*?"<>|`, r), unicode.IsControl(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}

	s := strings.Join(strings.Fields(b.String()), " ")
	s = strings.Trim(s, ". -")
	if utf8.RuneCountInString(s) > maxTitleRunes {
		s = strings.TrimRight(string([]rune(s)[:maxTitleRunes]), ". -")
	}
	if s == "" {
		return "untitled"
	}
	return s
}
