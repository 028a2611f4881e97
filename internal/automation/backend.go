// Package automation drives a live document-automation host as an
// extraction backend.
package automation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Host is a running automation application.
type Host interface {
	Open(ctx context.Context, path string) (Document, error)
	Quit() error
}

// Document is a document opened inside a Host.
type Document interface {
	Text() (string, error)
	Close() error
}

// Backend opens each document in a freshly dialed Host, reads its text and
// shuts the host down again.
type Backend struct {
	// Dial starts or attaches to a host.
	Dial func() (Host, error)
	// Probe reports whether a host could be dialed at all.
	Probe func() bool
	// Timeout bounds one extraction; zero means no limit.
	Timeout time.Duration
	Log     *slog.Logger

	name string
}

// NewBackend wires a Backend around dial and probe.
func NewBackend(name string, dial func() (Host, error), probe func() bool, log *slog.Logger) *Backend {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Backend{Dial: dial, Probe: probe, Log: log, name: name}
}

func (b *Backend) Name() string {
	return b.name
}

func (b *Backend) Available() bool {
	return b.Probe != nil && b.Probe()
}

func (b *Backend) Extract(ctx context.Context, path string) (text string, err error) {
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("automation host: %v", r)
		}
	}()

	host, err := b.Dial()
	if err != nil {
		return "", fmt.Errorf("dial host: %w", err)
	}
	defer func() {
		if qerr := host.Quit(); qerr != nil {
			b.Log.Warn("quit host", "error", qerr)
		}
	}()

	doc, err := host.Open(ctx, path)
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}
	text, err = doc.Text()
	if cerr := doc.Close(); cerr != nil {
		b.Log.Warn("close document", "path", path, "error", cerr)
	}
	if err != nil {
		return "", fmt.Errorf("read document text: %w", err)
	}
	return text, nil
}
