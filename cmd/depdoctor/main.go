package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"depdoctor/internal/advisor"
	"depdoctor/internal/build"
	"depdoctor/internal/changelog"
	"depdoctor/internal/config"
	"depdoctor/internal/deptree"
	"depdoctor/internal/llm"
	llmclient "depdoctor/internal/llmClient"
	"depdoctor/internal/pipeline"
	"depdoctor/internal/report"
	"depdoctor/internal/versions"
)

const retryBaseDelay = time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	fs := flag.NewFlagSet("depdoctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg, err := config.Resolve(fs, args, getenv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 1
	}

	logger := configureLogger(cfg.Log.Level, cfg.Log.Format, stderr)
	slog.SetDefault(logger)
	logger.Debug("configuration", "settings", cfg.String())

	cli, err := llmclient.New(ctx, llmclient.Options{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.APIKey(),
		BaseURL:  cfg.LLM.BaseURL,
		Timeout:  cfg.LLM.Timeout.Duration,
	})
	if err != nil {
		logger.Error("llm client", "error", err)
		return 1
	}
	var hook llm.PromptHook
	if cfg.LLM.TranscriptDir != "" {
		hook = &llm.PromptSaver{Dir: cfg.LLM.TranscriptDir, Logger: logger}
	}
	cli = llm.Wrap(cli,
		llm.WithLogging(logger),
		llm.Retry(cfg.LLM.MaxAttempts, retryBaseDelay),
		llm.WithHook(hook),
	)
	defer cli.Close()

	pl, err := newPipeline(cfg, cli, logger)
	if err != nil {
		logger.Error("setup", "error", err)
		return 1
	}

	project := build.Project{Dir: cfg.Build.Dir, BuildFile: cfg.Build.File, Task: cfg.Build.Task}
	rep, err := pl.Run(ctx, project)
	return finish(rep, err, cfg.Output.Format, stdout, logger)
}

// newPipeline wires every stage around the single client.
func newPipeline(cfg *config.Config, cli llmclient.LLMClient, logger *slog.Logger) (*pipeline.Pipeline, error) {
	runner := build.NewExecRunner(logger)
	runner.Maven = cfg.Build.Maven
	if len(cfg.Build.Goals) > 0 {
		runner.Goals = cfg.Build.Goals
	}
	runner.Timeout = cfg.Build.Timeout.Duration

	extractor, err := deptree.NewExtractor(cfg.Tree.EndMarker)
	if err != nil {
		return nil, err
	}
	order, err := versions.OrderFor(cfg.Versions.Order)
	if err != nil {
		return nil, err
	}
	web, err := changelog.NewWebClient(changelog.WebOptions{
		SearchURL:      cfg.Changelog.SearchURL,
		ResultSelector: cfg.Changelog.ResultSelector,
		UserAgent:      cfg.Changelog.UserAgent,
		Timeout:        cfg.Changelog.Timeout.Duration,
		CacheSize:      cfg.Changelog.CacheSize,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}

	return &pipeline.Pipeline{
		Runner:     runner,
		Tree:       &deptree.Fetcher{Runner: runner, Extractor: extractor, Maven: cfg.Build.Maven, Logger: logger},
		Classifier: &advisor.Classifier{LLM: cli},
		Locator:    &changelog.Locator{Search: web, Fetch: web, StripHTML: cfg.Changelog.StripHTML, Logger: logger},
		Summarizer: &advisor.Summarizer{LLM: cli},
		Order:      order,
		Logger:     logger,
	}, nil
}

// finish prints the report and maps the outcome to an exit code: 0 for a
// passing build, a finished diagnosis or no conflicting versions, 1 otherwise.
func finish(rep *pipeline.Report, err error, format string, stdout io.Writer, logger *slog.Logger) int {
	switch {
	case err == nil && rep != nil && rep.BuildSucceeded:
		logger.Info("build succeeded")
		return 0
	case err == nil, errors.Is(err, pipeline.ErrNoConflicts):
		if err != nil {
			logger.Warn("nothing to analyse", "reason", err)
		}
		if rep == nil {
			rep = &pipeline.Report{}
		}
		if werr := report.Write(stdout, rep.Output, format); werr != nil {
			logger.Error("write report", "error", werr)
			return 1
		}
		return 0
	case errors.Is(err, build.ErrBuildFileNotFound):
		logger.Error("file not found", "error", err)
		return 1
	case errors.Is(err, changelog.ErrFetchFailed), errors.Is(err, changelog.ErrVersionNotFound), errors.Is(err, changelog.ErrNoSearchResult):
		logger.Error("changelog unavailable", "error", err)
		return 1
	default:
		logger.Error("diagnosis failed", "error", err)
		return 1
	}
}

func configureLogger(logLevel, format string, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(logLevel)) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
