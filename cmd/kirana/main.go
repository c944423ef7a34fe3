// Command kirana serves the Nepali voice inventory command-understanding
// pipeline over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kiranavoice/kirana/internal/catalog"
	"github.com/kiranavoice/kirana/internal/config"
	"github.com/kiranavoice/kirana/internal/health"
	"github.com/kiranavoice/kirana/internal/httpapi"
	"github.com/kiranavoice/kirana/internal/observe"
	"github.com/kiranavoice/kirana/internal/understand"
	"github.com/kiranavoice/kirana/internal/understand/intent"
	"github.com/kiranavoice/kirana/internal/understand/intent/linear"
	"github.com/kiranavoice/kirana/internal/understand/resolve"
)

const shutdownTimeout = 15 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ─────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "kirana: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "kirana: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	listenAddr := cfg.Server.ListenAddr
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	slog.Info("kirana starting",
		"config", *configPath,
		"listen_addr", listenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Observability ─────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "kirana"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := otelShutdown(sctx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Statistical model (optional — degrade to rule-only) ──────────────
	classifier := buildClassifier(ctx, cfg, metrics)

	// ── Catalog snapshot ──────────────────────────────────────────────────
	snap, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		slog.Error("failed to load catalog", "path", cfg.Catalog.Path, "err", err)
		return 1
	}
	slog.Info("catalog loaded", "path", cfg.Catalog.Path, "items", len(snap.Entries))

	// ── Pipeline ──────────────────────────────────────────────────────────
	iopts := []understand.Option{
		understand.WithClassifier(classifier),
		understand.WithMetrics(metrics),
	}
	if ropts := resolverOptions(cfg); len(ropts) > 0 {
		iopts = append(iopts, understand.WithResolverOptions(ropts...))
	}
	interp := understand.New(iopts...)

	// ── HTTP server ───────────────────────────────────────────────────────
	checker := health.New(health.Checker{
		Name: "catalog",
		Check: func(context.Context) error {
			if len(snap.Entries) == 0 {
				return errors.New("catalog is empty")
			}
			return nil
		},
	})
	api := httpapi.New(httpapi.Config{
		Interpreter: interp,
		Snapshot:    snap,
		Metrics:     metrics,
		Health:      checker,
	})
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server ready — press Ctrl+C to shut down", "addr", listenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received, stopping…")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("kirana stopped")
	return 0
}

// buildClassifier loads the model artifact if configured and reachable,
// falling back to rule-only mode on any failure. The degraded state is
// surfaced through the readiness flag and the degraded-mode gauge.
func buildClassifier(ctx context.Context, cfg *config.Config, metrics *observe.Metrics) *intent.Classifier {
	opts := append(classifierOptions(cfg), intent.WithMetrics(metrics))

	if cfg.Classifier.ModelPath != "" {
		model, err := linear.Load(cfg.Classifier.ModelPath)
		if err != nil {
			slog.Warn("intent model unavailable, running rule-only", "path", cfg.Classifier.ModelPath, "err", err)
		} else {
			opts = append(opts, intent.WithModel(model))
			slog.Info("intent model loaded", "path", cfg.Classifier.ModelPath, "labels", model.Labels())
		}
	} else {
		slog.Warn("no intent model configured, running rule-only")
	}

	c := intent.New(opts...)
	metrics.SetDegraded(ctx, !c.Ready())
	return c
}

// classifierOptions translates the non-zero config knobs into options.
func classifierOptions(cfg *config.Config) []intent.Option {
	var opts []intent.Option
	if cfg.Classifier.Threshold > 0 {
		opts = append(opts, intent.WithThreshold(cfg.Classifier.Threshold))
	}
	if cfg.Classifier.SecondaryThreshold > 0 {
		opts = append(opts, intent.WithSecondaryThreshold(cfg.Classifier.SecondaryThreshold))
	}
	if cfg.Classifier.CheckBoost > 0 {
		opts = append(opts, intent.WithCheckBoost(cfg.Classifier.CheckBoost))
	}
	if kw := cfg.Keywords; kw != nil {
		opts = append(opts, intent.WithKeywords(intent.KeywordConfig{
			Version: kw.Version,
			Add:     kw.Add,
			Sale:    kw.Sale,
			Check:   kw.Check,
			Status:  kw.Status,
		}))
	}
	return opts
}

// resolverOptions translates the non-zero resolver knobs into options.
func resolverOptions(cfg *config.Config) []resolve.Option {
	var opts []resolve.Option
	if cfg.Resolver.SimilarityFloor > 0 {
		opts = append(opts, resolve.WithSimilarityFloor(cfg.Resolver.SimilarityFloor))
	}
	if len(cfg.Resolver.Overrides) > 0 {
		opts = append(opts, resolve.WithOverrides(cfg.Resolver.Overrides))
	}
	return opts
}

// newLogger builds the default slog text logger at the configured level.
func newLogger(level config.LogLevel) *slog.Logger {
	var l slog.Level
	switch level {
	case config.LogDebug:
		l = slog.LevelDebug
	case config.LogWarn:
		l = slog.LevelWarn
	case config.LogError:
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
