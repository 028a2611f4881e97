package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// OutputSuffix replaces the input extension in the name of the written text file.
const OutputSuffix = "_content.txt"

// Backend is a pluggable strategy for getting plain text out of a document.
type Backend interface {
	// Name identifies the backend in status lines and stats.
	Name() string
	// Available reports whether the backend's dependency is usable. It must
	// not have side effects.
	Available() bool
	Extract(ctx context.Context, path string) (string, error)
}

// BackendKind says which slot of the chain produced a result.
type BackendKind int

const (
	None BackendKind = iota
	Primary
	Fallback
)

func (k BackendKind) String() string {
	switch k {
	case Primary:
		return "primary"
	case Fallback:
		return "fallback"
	default:
		return "none"
	}
}

func (k BackendKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *BackendKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "primary":
		*k = Primary
	case "fallback":
		*k = Fallback
	case "none", "":
		*k = None
	default:
		return fmt.Errorf("unknown backend kind %q", b)
	}
	return nil
}

// DocumentRequest names one document to extract. OutputDir, when set,
// overrides the Extractor's output directory for this request only.
type DocumentRequest struct {
	Path        string `json:"path"`
	DisplayName string `json:"display_name"`
	OutputDir   string `json:"-"`
}

// NewRequest builds a request whose display name is the base of path.
func NewRequest(path string) DocumentRequest {
	return DocumentRequest{Path: path, DisplayName: filepath.Base(path)}
}

func (r DocumentRequest) name() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return filepath.Base(r.Path)
}

// Attempt records one backend invocation.
type Attempt struct {
	Backend BackendKind `json:"backend"`
	Name    string      `json:"name"`
	Error   string      `json:"error,omitempty"`
}

// Result is the outcome of one Extract call.
type Result struct {
	Request     DocumentRequest `json:"request"`
	Succeeded   bool            `json:"succeeded"`
	Text        string          `json:"text,omitempty"`
	Backend     BackendKind     `json:"backend"`
	BackendName string          `json:"backend_name,omitempty"`
	Error       string          `json:"error,omitempty"`
	OutputPath  string          `json:"output_path,omitempty"`
	Attempts    []Attempt       `json:"attempts"`
	Duration    time.Duration   `json:"duration_ns"`
}

// Capabilities is the outcome of probing both backends.
type Capabilities struct {
	Primary  bool `json:"primary"`
	Fallback bool `json:"fallback"`
}

// Extractor runs a Primary then Fallback backend chain over single documents.
// It holds no per-request state and is safe for concurrent use.
type Extractor struct {
	primary   Backend
	fallback  Backend
	caps      Capabilities
	outputDir string
	log       *slog.Logger
	stats     *Stats
}

type Option func(*Extractor)

// WithOutputDir sets where extracted text files are written.
func WithOutputDir(dir string) Option {
	return func(e *Extractor) { e.outputDir = dir }
}

func WithLogger(log *slog.Logger) Option {
	return func(e *Extractor) { e.log = log }
}

func WithStats(stats *Stats) Option {
	return func(e *Extractor) { e.stats = stats }
}

// New probes both backends once. Either backend may be nil.
func New(primary, fallback Backend, opts ...Option) *Extractor {
	e := &Extractor{
		primary:   primary,
		fallback:  fallback,
		outputDir: ".",
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.caps = Capabilities{
		Primary:  probe(primary, e.log),
		Fallback: probe(fallback, e.log),
	}
	return e
}

func probe(b Backend, log *slog.Logger) (ok bool) {
	if b == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			log.Warn("capability probe panicked", "backend", b.Name(), "panic", r)
			ok = false
		}
	}()
	return b.Available()
}

// Capabilities returns the probe results taken when the Extractor was built.
func (e *Extractor) Capabilities() Capabilities {
	return e.caps
}

// PrimaryName returns the primary backend's name, or "" when unset.
func (e *Extractor) PrimaryName() string {
	if e.primary == nil {
		return ""
	}
	return e.primary.Name()
}

// FallbackName returns the fallback backend's name, or "" when unset.
func (e *Extractor) FallbackName() string {
	if e.fallback == nil {
		return ""
	}
	return e.fallback.Name()
}

// Stats returns the latency recorder, which may be nil.
func (e *Extractor) Stats() *Stats {
	return e.stats
}

// OutputPath is where the text for req is written on success. Only the base
// of the display name is used, so the file never lands outside the directory.
func (e *Extractor) OutputPath(req DocumentRequest) string {
	dir := e.outputDir
	if req.OutputDir != "" {
		dir = req.OutputDir
	}
	return filepath.Join(dir, OutputName(filepath.Base(req.name())))
}

// OutputName derives the text file name from a document name.
func OutputName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + OutputSuffix
}

// Extract tries the primary backend, then the fallback. It never panics and
// never returns an error; the outcome is carried by the Result.
func (e *Extractor) Extract(ctx context.Context, req DocumentRequest) Result {
	start := time.Now()
	res := Result{Request: req, Attempts: []Attempt{}}
	log := e.log.With("document", req.name(), "path", req.Path)

	if _, err := os.Stat(req.Path); err != nil {
		res.Error = ErrNotFound.Error()
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("stat document", "error", err)
			res.Error = fmt.Errorf("stat document: %w", err).Error()
		}
		res.Duration = time.Since(start)
		return res
	}

	if !e.caps.Primary && !e.caps.Fallback {
		res.Error = ErrMissingDependency.Error()
		res.Duration = time.Since(start)
		return res
	}

	var firstErr error
	chain := []struct {
		kind    BackendKind
		backend Backend
		ok      bool
	}{
		{Primary, e.primary, e.caps.Primary},
		{Fallback, e.fallback, e.caps.Fallback},
	}
	for _, link := range chain {
		if !link.ok {
			continue
		}
		text, err := e.run(ctx, link.backend, req.Path)
		attempt := Attempt{Backend: link.kind, Name: link.backend.Name()}
		if err != nil {
			attempt.Error = err.Error()
			res.Attempts = append(res.Attempts, attempt)
			if firstErr == nil {
				firstErr = err
			}
			log.Info("backend failed", "backend", link.backend.Name(), "kind", link.kind, "error", err)
			continue
		}
		res.Attempts = append(res.Attempts, attempt)

		out := e.OutputPath(req)
		if err := writeText(out, text); err != nil {
			log.Error("write output failed", "output", out, "error", err)
			res.Text = text
			res.Error = err.Error()
			res.Duration = time.Since(start)
			return res
		}
		res.Succeeded = true
		res.Text = text
		res.Backend = link.kind
		res.BackendName = link.backend.Name()
		res.OutputPath = out
		res.Duration = time.Since(start)
		log.Info("extracted document", "backend", res.BackendName, "chars", len([]rune(text)), "output", out)
		return res
	}

	res.Error = firstErr.Error()
	res.Duration = time.Since(start)
	return res
}

// run invokes one backend, converting panics into a BackendError.
func (e *Extractor) run(ctx context.Context, b Backend, path string) (text string, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = &BackendError{Backend: b.Name(), Err: fmt.Errorf("panic: %v", r)}
		}
		if e.stats != nil {
			e.stats.Record(b.Name(), time.Since(start), err != nil)
		}
	}()

	text, err = b.Extract(ctx, path)
	if err != nil {
		var be *BackendError
		if !errors.As(err, &be) {
			err = &BackendError{Backend: b.Name(), Err: err}
		}
		return "", err
	}
	return text, nil
}

func writeText(path, text string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
