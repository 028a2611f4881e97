package parser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docread/internal/extractor"
)

// BackendName identifies the parser backend in results and stats.
const BackendName = "parser"

// Backend runs the in-process parsers as an extraction backend. A legacy
// .doc is read through a converted .docx next to it when one exists;
// otherwise the backend reports extractor.ErrNoText.
type Backend struct {
	PDFFallbackPdftotext bool
}

func (b *Backend) Name() string {
	return BackendName
}

// Available is always true: the parsers are compiled in.
func (b *Backend) Available() bool {
	return true
}

func (b *Backend) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target, err := resolve(path)
	if err != nil {
		return "", err
	}
	p, err := ForFile(target)
	if err != nil {
		return "", fmt.Errorf("%w: %v", extractor.ErrNoText, err)
	}
	if pdf, ok := p.(*PDFParser); ok {
		pdf.FallbackPdftotext = b.PDFFallbackPdftotext
	}

	f, err := os.Open(target)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", filepath.Base(target), err)
	}
	defer f.Close()

	return p.Parse(f, filepath.Base(target))
}

// resolve maps a legacy .doc to its converted .docx sibling.
func resolve(path string) (string, error) {
	if !strings.EqualFold(filepath.Ext(path), ".doc") {
		return path, nil
	}
	sibling := strings.TrimSuffix(path, filepath.Ext(path)) + ".docx"
	if _, err := os.Stat(sibling); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: legacy .doc has no converted .docx copy", extractor.ErrNoText)
		}
		return "", fmt.Errorf("stat %s: %w", filepath.Base(sibling), err)
	}
	return sibling, nil
}
