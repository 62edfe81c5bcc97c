// Command quinimind collects Quini 6 results and serves statistics over them.
//
// Usage:
//
//	quinimind -config quinimind.yaml          # serve API + scheduled refreshes
//	quinimind -db quini.db -refresh           # one refresh and exit
//	quinimind -db quini.db -stats             # show stats and exit
//	quinimind -db quini.db -predict -modalidad revancha
//	quinimind -db quini.db -refresh -serve    # refresh, then serve
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/quinimind"
	"github.com/hazyhaar/quinimind/draw"
	"github.com/hazyhaar/quinimind/internal/api"
)

type options struct {
	configPath string
	dbPath     string
	snapshot   string
	addr       string
	cron       string
	modality   string
	refresh    bool
	predict    bool
	stats      bool
	serve      bool
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "path to quinimind.yaml config file")
	flag.StringVar(&o.dbPath, "db", "", "path to SQLite database")
	flag.StringVar(&o.snapshot, "snapshot", "", "path of the latest-draw JSON snapshot (- disables)")
	flag.StringVar(&o.addr, "addr", "", "HTTP listen address (default :8000)")
	flag.StringVar(&o.cron, "cron", "", "refresh schedule, e.g. \"30 23 * * 0,3\" or @every 6h")
	flag.StringVar(&o.modality, "modalidad", "TRADICIONAL", "modality for -predict")
	flag.BoolVar(&o.refresh, "refresh", false, "run one refresh (exit after unless -serve)")
	flag.BoolVar(&o.predict, "predict", false, "print a prediction and exit")
	flag.BoolVar(&o.stats, "stats", false, "show stats and exit")
	flag.BoolVar(&o.serve, "serve", false, "serve the API and scheduled refreshes (default when no one-shot flag is set)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "json", "log format: json, text")
	flag.Parse()

	logger := newLogger(*logLevel, *logFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, o); err != nil {
		logger.Error("quinimind: fatal", "error", err)
		os.Exit(1)
	}
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	if format == "text" {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      lvl,
			TimeFormat: time.TimeOnly,
			NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func run(ctx context.Context, logger *slog.Logger, o options) error {
	cfg, err := resolveConfig(o)
	if err != nil {
		return err
	}

	svc, err := quinimind.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer svc.Close()

	if o.refresh {
		report, err := svc.Refresh(ctx)
		if report != nil && !o.serve {
			if err := printJSON(report); err != nil {
				return err
			}
		}
		if err != nil {
			return fmt.Errorf("refresh: %w", err)
		}
	}

	if o.stats {
		stats, err := svc.Stats(ctx)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		return printJSON(stats)
	}

	if o.predict {
		m, err := draw.ParseModality(o.modality)
		if err != nil {
			return err
		}
		nums, err := svc.Predict(ctx, m)
		if err != nil {
			return fmt.Errorf("predict: %w", err)
		}
		return printJSON(map[string]any{"modalidad": m, "numbers": nums})
	}

	if o.refresh && !o.serve {
		return nil
	}
	return serve(ctx, logger, svc, cfg.HTTP.Addr)
}

// serve runs the API server and the refresh scheduler until ctx is cancelled.
func serve(ctx context.Context, logger *slog.Logger, svc *quinimind.Service, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.New(svc, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("quinimind: listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return svc.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("quinimind: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func resolveConfig(o options) (*quinimind.Config, error) {
	cfg := &quinimind.Config{}
	if o.configPath != "" {
		c, err := quinimind.LoadConfigFile(o.configPath)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		cfg = c
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.snapshot != "" {
		cfg.SnapshotPath = o.snapshot
	}
	if o.addr != "" {
		cfg.HTTP.Addr = o.addr
	}
	if o.cron != "" {
		cfg.Schedule.Cron = o.cron
	}
	return cfg, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
