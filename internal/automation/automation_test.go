package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	openErr error
	text    string
	textErr error
	panicOn string

	opened, closed, quit bool
}

func (h *fakeHost) Open(_ context.Context, path string) (Document, error) {
	if h.panicOn == "open" {
		panic("host vanished")
	}
	if h.openErr != nil {
		return nil, h.openErr
	}
	h.opened = true
	return &fakeDoc{host: h}, nil
}

func (h *fakeHost) Quit() error {
	h.quit = true
	return nil
}

type fakeDoc struct{ host *fakeHost }

func (d *fakeDoc) Text() (string, error) { return d.host.text, d.host.textErr }

func (d *fakeDoc) Close() error {
	d.host.closed = true
	return nil
}

func TestBackend_OpenReadCloseQuit(t *testing.T) {
	host := &fakeHost{text: "Hello"}
	b := NewBackend("fake", func() (Host, error) { return host, nil }, func() bool { return true }, nil)

	text, err := b.Extract(context.Background(), "a.doc")
	require.NoError(t, err)
	assert.Equal(t, "Hello", text)
	assert.True(t, host.opened)
	assert.True(t, host.closed)
	assert.True(t, host.quit)
}

func TestBackend_OpenFailure(t *testing.T) {
	host := &fakeHost{openErr: errors.New("file is locked")}
	b := NewBackend("fake", func() (Host, error) { return host, nil }, func() bool { return true }, nil)

	_, err := b.Extract(context.Background(), "a.doc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open document")
	assert.Contains(t, err.Error(), "file is locked")
	assert.True(t, host.quit, "host must be shut down after a failed open")
}

func TestBackend_TextFailureStillCloses(t *testing.T) {
	host := &fakeHost{textErr: errors.New("content unavailable")}
	b := NewBackend("fake", func() (Host, error) { return host, nil }, func() bool { return true }, nil)

	_, err := b.Extract(context.Background(), "a.doc")
	require.Error(t, err)
	assert.True(t, host.closed)
}

func TestBackend_DialFailure(t *testing.T) {
	b := NewBackend("fake", func() (Host, error) { return nil, errors.New("class not registered") }, func() bool { return true }, nil)
	_, err := b.Extract(context.Background(), "a.doc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial host")
}

func TestBackend_PanicBecomesError(t *testing.T) {
	host := &fakeHost{panicOn: "open"}
	b := NewBackend("fake", func() (Host, error) { return host, nil }, func() bool { return true }, nil)

	var err error
	require.NotPanics(t, func() { _, err = b.Extract(context.Background(), "a.doc") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host vanished")
}

func TestBackend_Available(t *testing.T) {
	assert.False(t, (&Backend{}).Available())
	assert.True(t, NewBackend("x", nil, func() bool { return true }, nil).Available())
	assert.False(t, NewBackend("x", nil, func() bool { return false }, nil).Available())
}

// convertRunner mimics a LibreOffice text conversion by writing the
// converted file into the --outdir directory.
type convertRunner struct {
	output []byte
	err    error
	stderr string
	args   []string
}

func (r *convertRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.args = args
	if r.err != nil {
		return nil, []byte(r.stderr), r.err
	}
	var outdir string
	for i, a := range args {
		if a == "--outdir" && i+1 < len(args) {
			outdir = args[i+1]
		}
	}
	src := args[len(args)-1]
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	if r.output != nil {
		if err := os.WriteFile(filepath.Join(outdir, stem+".txt"), r.output, 0o600); err != nil {
			return nil, nil, err
		}
	}
	return nil, []byte(r.stderr), nil
}

func TestOfficeHost_ConvertsAndStripsBOM(t *testing.T) {
	runner := &convertRunner{output: append([]byte{0xEF, 0xBB, 0xBF}, []byte("项目申请书")...)}
	host := &OfficeHost{Binary: "soffice", Runner: runner}

	doc, err := host.Open(context.Background(), filepath.Join(t.TempDir(), "申请书.doc"))
	require.NoError(t, err)
	text, err := doc.Text()
	require.NoError(t, err)
	assert.Equal(t, "项目申请书", text)

	assert.Contains(t, runner.args, "--headless")
	assert.Contains(t, runner.args, textFilter)

	dir := doc.(*officeDocument).dir
	require.NoError(t, doc.Close())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "Close must remove the conversion directory")
}

func TestOfficeHost_RunFailureCarriesStderr(t *testing.T) {
	runner := &convertRunner{err: errors.New("exit status 1"), stderr: "Error: source file could not be loaded"}
	host := &OfficeHost{Binary: "/usr/bin/soffice", Runner: runner}

	_, err := host.Open(context.Background(), "a.doc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source file could not be loaded")
}

func TestOfficeHost_MissingOutput(t *testing.T) {
	runner := &convertRunner{}
	host := &OfficeHost{Binary: "soffice", Runner: runner}

	_, err := host.Open(context.Background(), "a.doc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conversion failed")
}

func TestOfficeBackend_EndToEnd(t *testing.T) {
	runner := &convertRunner{output: []byte("Hello")}
	b := NewOfficeBackend("soffice", runner, nil)
	assert.Equal(t, "office:soffice", b.Name())

	text, err := b.Extract(context.Background(), filepath.Join(t.TempDir(), "a.doc"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", text)
}

func TestOfficeAvailable_UnknownBinary(t *testing.T) {
	assert.False(t, OfficeAvailable("docread-no-such-office-binary"))
}
