// Command docread extracts the plain text of word-processing documents,
// prints a preview of each and saves the text next to the working directory.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/docread/internal/automation"
	"github.com/dgallion1/docread/internal/config"
	"github.com/dgallion1/docread/internal/extractor"
	"github.com/dgallion1/docread/internal/parser"
	"github.com/dgallion1/docread/internal/pipeline"
	"github.com/dgallion1/docread/internal/report"
)

func main() {
	cfg := config.Load()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	reqs, err := cfg.Requests(os.Args[1:])
	if err != nil {
		log.Error("resolve documents", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	office := automation.NewOfficeBackend(cfg.OfficeBinary, automation.ExecRunner{Log: log}, log)
	office.Timeout = cfg.HostTimeout
	ex := extractor.New(office, &parser.Backend{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
		extractor.WithOutputDir(cfg.OutputDir),
		extractor.WithLogger(log),
	)

	out := report.NewPrinter(os.Stdout, cfg.PreviewChars, !cfg.NoColor && report.IsTerminal(os.Stdout))
	out.Start()
	out.Capabilities(ex.Capabilities(), ex.PrimaryName(), ex.FallbackName())

	runner := pipeline.NewRunner(ex, cfg.Workers, log)
	runner.OnResult = func(res extractor.Result) {
		out.Document(res.Request)
		out.Result(res)
	}
	runner.Run(ctx, reqs)

	// Per-document failures are reported above; the run itself succeeded.
	out.Done()
}
