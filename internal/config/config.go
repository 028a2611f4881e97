package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docread/internal/extractor"
)

// Default sample location and documents, relative to the working directory.
var (
	DefaultSampleDir = filepath.Join("页面设计v6.0", "样例数据")
	DefaultDocuments = []string{
		"附件二：研发项目申请书(1).doc",
		"附件三：研发项目经费预算(1).doc",
	}
)

type Config struct {
	// Documents
	SampleDir     string
	DocumentsFile string
	OutputDir     string

	// Backends
	OfficeBinary         string
	HostTimeout          time.Duration
	PDFFallbackPdftotext bool

	// Run
	Workers      int
	PreviewChars int
	NoColor      bool
	LogLevel     slog.Level

	// Server
	Port           string
	APIKey         string
	MaxUploadBytes int64
}

func Load() Config {
	cfg := Config{
		SampleDir:     envOr("DOCREAD_SAMPLE_DIR", DefaultSampleDir),
		DocumentsFile: os.Getenv("DOCREAD_DOCUMENTS_FILE"),
		OutputDir:     envOr("DOCREAD_OUTPUT_DIR", "."),

		OfficeBinary:         envOr("DOCREAD_OFFICE_BINARY", "soffice"),
		HostTimeout:          envDuration("DOCREAD_HOST_TIMEOUT", 0),
		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		Workers:      envInt("DOCREAD_WORKERS", 1),
		PreviewChars: envInt("DOCREAD_PREVIEW_CHARS", 1000),
		NoColor:      envBool("DOCREAD_NO_COLOR", os.Getenv("NO_COLOR") != ""),
		LogLevel:     envLevel("DOCREAD_LOG_LEVEL", slog.LevelWarn),

		Port:           envOr("PORT", "8090"),
		APIKey:         os.Getenv("DOCREAD_API_KEY"),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB
	}

	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.PreviewChars <= 0 {
		cfg.PreviewChars = 1000
	}
	if cfg.HostTimeout < 0 {
		cfg.HostTimeout = 0
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}

	return cfg
}

// Validate checks settings every entry point needs.
func (c Config) Validate() error {
	if c.OfficeBinary == "" {
		return fmt.Errorf("DOCREAD_OFFICE_BINARY must not be empty")
	}
	if c.DocumentsFile != "" {
		if _, err := os.Stat(c.DocumentsFile); err != nil {
			return fmt.Errorf("DOCREAD_DOCUMENTS_FILE: %w", err)
		}
	}
	return nil
}

// ValidateServer checks settings the HTTP server needs on top of Validate.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("DOCREAD_API_KEY is required")
	}
	return nil
}

// documentsFile is the YAML shape of DOCREAD_DOCUMENTS_FILE.
type documentsFile struct {
	SampleDir string `yaml:"sample_dir"`
	Documents []struct {
		Path string `yaml:"path"`
		Name string `yaml:"name"`
	} `yaml:"documents"`
}

// Requests resolves the documents to process. Explicit args win, then the
// documents file, then the built-in sample list. Relative paths are joined
// to the sample directory, which is itself relative to the working directory.
func (c Config) Requests(args []string) ([]extractor.DocumentRequest, error) {
	if len(args) > 0 {
		reqs := make([]extractor.DocumentRequest, 0, len(args))
		for _, a := range args {
			reqs = append(reqs, extractor.NewRequest(a))
		}
		return reqs, nil
	}

	base, err := filepath.Abs(c.SampleDir)
	if err != nil {
		return nil, fmt.Errorf("resolve sample dir: %w", err)
	}

	if c.DocumentsFile == "" {
		reqs := make([]extractor.DocumentRequest, 0, len(DefaultDocuments))
		for _, name := range DefaultDocuments {
			reqs = append(reqs, extractor.DocumentRequest{Path: filepath.Join(base, name), DisplayName: name})
		}
		return reqs, nil
	}

	data, err := os.ReadFile(c.DocumentsFile)
	if err != nil {
		return nil, fmt.Errorf("read documents file: %w", err)
	}
	var df documentsFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("parse documents file: %w", err)
	}
	if df.SampleDir != "" {
		dir := df.SampleDir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(filepath.Dir(c.DocumentsFile), dir)
		}
		if base, err = filepath.Abs(dir); err != nil {
			return nil, fmt.Errorf("resolve sample dir: %w", err)
		}
	}

	reqs := make([]extractor.DocumentRequest, 0, len(df.Documents))
	for i, d := range df.Documents {
		if d.Path == "" {
			return nil, fmt.Errorf("documents file: entry %d has no path", i)
		}
		path := d.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(base, path)
		}
		name := d.Name
		if name == "" {
			name = filepath.Base(d.Path)
		}
		reqs = append(reqs, extractor.DocumentRequest{Path: path, DisplayName: name})
	}
	return reqs, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			return l
		}
	}
	return fallback
}
