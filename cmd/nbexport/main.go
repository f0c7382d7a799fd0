package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"nbexport/internal/config"
	apperrors "nbexport/internal/errors"
	"nbexport/internal/export"
	"nbexport/internal/gitsrc"
	"nbexport/internal/linkcheck"
	"nbexport/internal/logfields"
	"nbexport/internal/metrics"
	"nbexport/internal/render"
	"nbexport/internal/server"
	"nbexport/internal/site"
	"nbexport/internal/watch"
	"nbexport/internal/workspace"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"nbexport.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Source string `short:"s" help:"Notebook source directory (overrides config)"`
		Output string `short:"o" help:"Output directory for the generated site (overrides config)"`
		Repo   string `short:"r" help:"Export from a remote repository URL instead of a local source"`
	} `cmd:"" help:"Export the notebook tree to a static site"`

	Watch struct {
		Source string `short:"s" help:"Notebook source directory (overrides config)"`
		Output string `short:"o" help:"Output directory for the generated site (overrides config)"`
	} `cmd:"" help:"Export continuously, re-running on source changes"`

	Serve struct {
		Addr   string `short:"a" help:"Listen address (overrides config)"`
		Source string `short:"s" help:"Notebook source directory (overrides config)"`
		Output string `short:"o" help:"Output directory for the generated site (overrides config)"`
	} `cmd:"" help:"Export, then serve the site locally with live reload"`

	Verify struct {
		Output string `short:"o" help:"Output directory to verify (overrides config)"`
	} `cmd:"" help:"Check internal links across a generated site"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	kctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch kctx.Command() {
	case "build":
		err = runBuild(ctx)
	case "watch":
		err = runWatch(ctx)
	case "serve":
		err = runServe(ctx)
	case "verify":
		err = runVerify()
	case "init":
		err = config.Init(CLI.Config, CLI.Init.Force)
	}
	if err != nil && !stderrors.Is(err, context.Canceled) {
		slog.Error("Command failed", slog.String("command", kctx.Command()), logfields.Error(err))
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to defaults when it is the
// default path and absent.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(CLI.Config); os.IsNotExist(err) && CLI.Config == "nbexport.yaml" {
		slog.Debug("No configuration file, using defaults")
		return config.Default(), nil
	}
	return config.Load(CLI.Config)
}

func applyOverrides(cfg *config.Config, source, output string) {
	if source != "" {
		cfg.Source = source
		cfg.Repo = nil
	}
	if output != "" {
		cfg.Output.Directory = output
	}
}

// resolveSource returns the directory to export: the configured local source,
// or a fresh clone of the configured repository. The returned cleanup must be
// called when the source is no longer needed.
func resolveSource(ctx context.Context, cfg *config.Config) (string, func(), error) {
	if cfg.Repo == nil {
		return cfg.Source, func() {}, nil
	}

	ws := workspace.NewManager("")
	if err := ws.Create(); err != nil {
		return "", nil, err
	}
	cleanup := func() {
		if err := ws.Cleanup(); err != nil {
			slog.Warn("Failed to clean up workspace", logfields.Error(err))
		}
	}

	source, err := gitsrc.NewClient(ws.Path()).Clone(ctx, cfg.Repo)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return source, cleanup, nil
}

func newExporter(cfg *config.Config, liveReload bool, rec metrics.Recorder) (*export.Exporter, error) {
	renderer, err := render.NewPageRenderer()
	if err != nil {
		return nil, err
	}
	exporter, err := export.New(renderer, export.Options{
		BaseURL:       cfg.Site.BaseURL,
		Theme:         cfg.Site.Theme,
		PageConfig:    cfg.Site.PageConfig,
		LiveReload:    liveReload,
		OnRenderError: export.RenderErrorPolicy(cfg.Site.OnRenderError),
	})
	if err != nil {
		return nil, err
	}
	return exporter.WithRecorder(rec), nil
}

// runExport performs one full export of source into the output directory.
func runExport(ctx context.Context, cfg *config.Config, exporter *export.Exporter, rec metrics.Recorder, source string) error {
	buildID := uuid.NewString()
	start := time.Now()
	slog.Info("Starting export", logfields.BuildID(buildID), logfields.Path(source),
		logfields.Output(cfg.Output.Directory))

	writer := site.NewWriter(cfg.Output.Directory)
	if cfg.Output.Clean {
		if err := writer.Clean(); err != nil {
			return err
		}
	}

	var failed error
	for artifact, err := range exporter.Export(ctx, source) {
		if err != nil {
			var ee *apperrors.ExportError
			if stderrors.As(err, &ee) && ee.Severity != apperrors.SeverityFatal {
				slog.Warn("Export degraded", logfields.Error(err))
				continue
			}
			failed = err
			break
		}
		if err := writer.Write(artifact); err != nil {
			failed = err
			break
		}
	}

	rec.ObserveExportDuration(time.Since(start))
	switch {
	case failed != nil && stderrors.Is(failed, context.Canceled):
		rec.IncExportOutcome(metrics.OutcomeCanceled)
		return failed
	case failed != nil:
		rec.IncExportOutcome(metrics.OutcomeFailed)
		return failed
	}

	if err := site.WriteManifest(cfg.Output.Directory, site.Manifest{
		BaseURL:    cfg.Site.BaseURL,
		Theme:      cfg.Site.Theme,
		Title:      cfg.Site.Title,
		PageConfig: cfg.Site.PageConfig,
	}); err != nil {
		rec.IncExportOutcome(metrics.OutcomeFailed)
		return err
	}

	rec.IncExportOutcome(metrics.OutcomeSuccess)
	slog.Info("Export complete", logfields.BuildID(buildID),
		logfields.Count(writer.Written()), logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return nil
}

func runBuild(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyOverrides(cfg, CLI.Build.Source, CLI.Build.Output)
	if CLI.Build.Repo != "" {
		cfg.Repo = &config.RepoConfig{URL: CLI.Build.Repo, Branch: "main", Depth: 1}
	}

	source, cleanup, err := resolveSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	rec := metrics.NewPrometheusRecorder(nil)
	exporter, err := newExporter(cfg, false, rec)
	if err != nil {
		return err
	}
	return runExport(ctx, cfg, exporter, rec, source)
}

// watchLoop runs an initial export, then re-exports on filesystem changes and
// (optionally) on a fixed interval. onBuild is invoked after each successful
// export.
func watchLoop(ctx context.Context, cfg *config.Config, exporter *export.Exporter, rec metrics.Recorder, source string, onBuild func()) error {
	rebuild := func() {
		if err := runExport(ctx, cfg, exporter, rec, source); err != nil {
			if stderrors.Is(err, context.Canceled) {
				return
			}
			slog.Error("Export failed, keeping previous site", logfields.Error(err))
			return
		}
		if onBuild != nil {
			onBuild()
		}
	}

	rebuild()

	watcher, err := watch.New(source, cfg.Debounce(), rebuild)
	if err != nil {
		return err
	}

	if every := cfg.RebuildEvery(); every > 0 {
		scheduler, err := watch.NewScheduler()
		if err != nil {
			return err
		}
		if err := scheduler.Every(every, rebuild); err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				slog.Warn("Failed to stop scheduler", logfields.Error(err))
			}
		}()
		slog.Info("Periodic re-export enabled", slog.Duration("every", every))
	}

	slog.Info("Watching for changes", logfields.Path(source))
	return watcher.Run(ctx)
}

func runWatch(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyOverrides(cfg, CLI.Watch.Source, CLI.Watch.Output)
	if cfg.Repo != nil {
		return apperrors.ConfigError("watch requires a local source, not a repo")
	}

	rec := metrics.NewPrometheusRecorder(nil)
	exporter, err := newExporter(cfg, false, rec)
	if err != nil {
		return err
	}
	return watchLoop(ctx, cfg, exporter, rec, cfg.Source, nil)
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyOverrides(cfg, CLI.Serve.Source, CLI.Serve.Output)
	if CLI.Serve.Addr != "" {
		cfg.Serve.Addr = CLI.Serve.Addr
	}
	if cfg.Repo != nil {
		return apperrors.ConfigError("serve requires a local source, not a repo")
	}

	rec := metrics.NewPrometheusRecorder(nil)
	exporter, err := newExporter(cfg, cfg.Serve.LiveReload, rec)
	if err != nil {
		return err
	}

	var hub *server.LiveReloadHub
	if cfg.Serve.LiveReload {
		hub = server.NewLiveReloadHub()
	}

	srv := server.New(server.Options{
		Addr:     cfg.Serve.Addr,
		Dir:      cfg.Output.Directory,
		Hub:      hub,
		Registry: rec.Registry(),
	})

	errCh := make(chan error, 2)
	go func() { errCh <- srv.Run(ctx) }()

	if cfg.Serve.LiveReload {
		go func() {
			errCh <- watchLoop(ctx, cfg, exporter, rec, cfg.Source, func() {
				hub.Broadcast(uuid.NewString())
			})
		}()
	} else if err := runExport(ctx, cfg, exporter, rec, cfg.Source); err != nil {
		return err
	}

	return <-errCh
}

func runVerify() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if CLI.Verify.Output != "" {
		cfg.Output.Directory = CLI.Verify.Output
	}

	problems, err := linkcheck.NewChecker(cfg.Output.Directory, cfg.Site.BaseURL).Check()
	if err != nil {
		return err
	}
	for _, p := range problems {
		slog.Error("Broken link", logfields.Path(p.Page),
			logfields.URL(p.URL), slog.String("target", p.Target), slog.String("reason", p.Reason))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d broken links found", len(problems))
	}
	slog.Info("All internal links resolve", logfields.Path(cfg.Output.Directory))
	return nil
}
