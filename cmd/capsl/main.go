package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dd0wney/capsl/pkg/checker"
	"github.com/dd0wney/capsl/pkg/config"
	"github.com/dd0wney/capsl/pkg/export"
	"github.com/dd0wney/capsl/pkg/logging"
	"github.com/dd0wney/capsl/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "capsl.yaml", "Project file")
	printTables := flag.Bool("print", false, "Print every transition table")
	logLevel := flag.String("log-level", "", "Override the configured log level (debug, info, warn, error)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Builds a runtime checker from interface automata and temporal rules.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *logLevel, *printTables); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+err.Error()))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, logLevel string, printTables bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger := logging.NewJSONLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))
	logging.SetDefaultLogger(logger)
	reg := metrics.NewRegistry()

	translator, err := checker.NewTranslator(cfg, logger)
	if err != nil {
		return err
	}

	b := &checker.Builder{
		Logger:     logger,
		Metrics:    reg,
		Translator: translator,
		Workers:    cfg.Translator.Workers,
	}
	res, err := b.Build(ctx, cfg)
	if err != nil {
		return err
	}

	if printTables {
		if err := res.WriteTables(os.Stdout); err != nil {
			return err
		}
	}

	art := export.NewArtifact(cfg.Name, res.Reference, res.Components.Members(), res.Rules.Members())
	artifactPath := cfg.ArtifactPath()
	if err := export.WriteArtifactFile(artifactPath, art, cfg.Output.Compress); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	logger.Info("artifact written", logging.Path(artifactPath), logging.String("artifact_id", art.ID))

	var diagrams []string
	if cfg.Output.Diagrams {
		diagrams, err = export.WriteDiagrams(filepath.Join(cfg.Output.Dir, "diagrams"), res.Automata())
		if err != nil {
			return fmt.Errorf("write diagrams: %w", err)
		}
	}

	if cfg.Output.MetricsFile != "" {
		if err := reg.WriteTextfile(cfg.Output.MetricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	fmt.Println(renderSummary(res, art, artifactPath, diagrams))
	return nil
}
