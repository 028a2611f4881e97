// Package report renders extraction progress as human-readable status lines.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/dgallion1/docread/internal/extractor"
)

// DefaultPreviewChars is how much extracted text is echoed per document.
const DefaultPreviewChars = 1000

// Preview returns the first limit characters of text, trimmed, and how many
// characters were left out.
func Preview(text string, limit int) (string, int) {
	total := utf8.RuneCountInString(text)
	if limit <= 0 || total <= limit {
		return strings.TrimSpace(text), 0
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit])), total - limit
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Printer writes status lines for a run.
type Printer struct {
	w            io.Writer
	previewChars int

	ok   *color.Color
	warn *color.Color
	fail *color.Color
	info *color.Color
	head *color.Color
}

// NewPrinter returns a Printer. Colour is used only when colored is true.
func NewPrinter(w io.Writer, previewChars int, colored bool) *Printer {
	if previewChars <= 0 {
		previewChars = DefaultPreviewChars
	}
	p := &Printer{
		w:            w,
		previewChars: previewChars,
		ok:           color.New(color.FgGreen),
		warn:         color.New(color.FgYellow),
		fail:         color.New(color.FgRed),
		info:         color.New(color.FgCyan),
		head:         color.New(color.FgWhite, color.Bold),
	}
	for _, c := range []*color.Color{p.ok, p.warn, p.fail, p.info, p.head} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *Printer) line(c *color.Color, format string, args ...any) {
	c.Fprintf(p.w, format, args...)
	fmt.Fprintln(p.w)
}

// Start prints the run banner.
func (p *Printer) Start() {
	p.line(p.head, "🚀 Reading document contents...")
}

// Capabilities prints one line per backend probe.
func (p *Printer) Capabilities(caps extractor.Capabilities, primaryName, fallbackName string) {
	if caps.Primary {
		p.line(p.ok, "✅ %s available", primaryName)
	} else {
		p.line(p.warn, "⚠️  %s unavailable, trying other methods", orUnset(primaryName))
	}
	if caps.Fallback {
		p.line(p.ok, "✅ %s available", fallbackName)
	} else {
		p.line(p.warn, "⚠️  %s unavailable", orUnset(fallbackName))
	}
	if !caps.Primary && !caps.Fallback {
		p.line(p.fail, "❌ no extraction backend available")
	}
}

func orUnset(name string) string {
	if name == "" {
		return "backend"
	}
	return name
}

// Document prints the header shown before a document is processed.
func (p *Printer) Document(req extractor.DocumentRequest) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, strings.Repeat("=", 60))
	p.line(p.head, "📄 Reading file: %s", req.DisplayName)
	p.line(p.info, "📁 File path: %s", req.Path)
}

// Result prints the outcome of one extraction.
func (p *Printer) Result(res extractor.Result) {
	if res.Error == extractor.ErrNotFound.Error() {
		p.line(p.fail, "❌ File does not exist: %s", res.Request.Path)
		return
	}
	for _, a := range res.Attempts {
		p.line(p.info, "🔄 Using %s backend (%s)...", a.Backend, a.Name)
		if a.Error != "" {
			p.line(p.fail, "❌ %s failed: %s", a.Name, a.Error)
		}
	}
	if !res.Succeeded {
		p.line(p.fail, "❌ Extraction failed: %s", res.Error)
		return
	}

	p.line(p.ok, "✅ Read document content (%d characters)", utf8.RuneCountInString(res.Text))
	p.line(p.info, "📝 Content preview:")
	fmt.Fprintln(p.w, strings.Repeat("-", 40))
	preview, rest := Preview(res.Text, p.previewChars)
	if preview == "" {
		fmt.Fprintln(p.w, "(document is empty or could not be read)")
	} else {
		fmt.Fprintln(p.w, preview)
		if rest > 0 {
			fmt.Fprintf(p.w, "\n... (%d more characters)\n", rest)
		}
	}
	p.line(p.ok, "💾 Content saved to: %s", res.OutputPath)
}

// Done prints the completion line.
func (p *Printer) Done() {
	fmt.Fprintln(p.w)
	p.line(p.ok, "✅ Done!")
}
