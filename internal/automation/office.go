package automation

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultOfficeBinary is the LibreOffice launcher looked up on PATH.
const DefaultOfficeBinary = "soffice"

const textFilter = "txt:Text (encoded):UTF8"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// OfficeHost runs LibreOffice headless as the automation host. Each Open is
// one conversion into a private temp directory.
type OfficeHost struct {
	Binary string
	Runner Runner
}

// NewOfficeBackend returns a Backend that dials an OfficeHost per document.
func NewOfficeBackend(binary string, runner Runner, log *slog.Logger) *Backend {
	if binary == "" {
		binary = DefaultOfficeBinary
	}
	return NewBackend("office:"+filepath.Base(binary),
		func() (Host, error) { return &OfficeHost{Binary: binary, Runner: runner}, nil },
		func() bool { return OfficeAvailable(binary) },
		log,
	)
}

// OfficeAvailable reports whether binary resolves to an executable.
func OfficeAvailable(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}

func (h *OfficeHost) Open(ctx context.Context, path string) (Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	dir, err := os.MkdirTemp("", "docread-office-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	// A private profile lets several conversions run side by side.
	profile := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(dir, "profile"))}
	args := []string{
		"-env:UserInstallation=" + profile.String(),
		"--headless",
		"--norestore",
		"--convert-to", textFilter,
		"--outdir", dir,
		abs,
	}
	_, stderr, err := h.Runner.Run(ctx, h.Binary, args...)
	if err != nil {
		os.RemoveAll(dir)
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", filepath.Base(h.Binary), err, msg)
		}
		return nil, fmt.Errorf("%s: %w", filepath.Base(h.Binary), err)
	}

	stem := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	out := filepath.Join(dir, stem+".txt")
	if _, err := os.Stat(out); err != nil {
		os.RemoveAll(dir)
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = "no output file"
		}
		return nil, fmt.Errorf("conversion failed: %s", msg)
	}
	return &officeDocument{dir: dir, textPath: out}, nil
}

// Quit is a no-op: every conversion runs in its own short-lived process.
func (h *OfficeHost) Quit() error {
	return nil
}

type officeDocument struct {
	dir      string
	textPath string
}

func (d *officeDocument) Text() (string, error) {
	data, err := os.ReadFile(d.textPath)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimPrefix(data, utf8BOM)), nil
}

func (d *officeDocument) Close() error {
	return os.RemoveAll(d.dir)
}
