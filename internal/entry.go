// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/indexer"
	"github.com/starford/raido/internal/live"
	"github.com/starford/raido/internal/progress"
	"github.com/starford/raido/internal/search"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Int("roots", len(cfg.Index.Roots)),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize SQLite path store.
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	// Progress broker; subscribers see rebuild progress at a bounded rate.
	broker := progress.NewBroker(250 * time.Millisecond)
	defer broker.Close()

	events := broker.Subscribe()
	go logRebuildEvents(logger, events)

	rebuilder := indexer.New(db, broker, logger)
	engine := search.New(db, logger)

	if err := rebuildOnLaunch(ctx, app, cfg, db, rebuilder, logger); err != nil {
		return err
	}
	if app.rebuildOnly {
		return nil
	}

	if app.query != "" {
		resp, err := engine.Search(app.query, cfg.Search.Options())
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		printResponse(os.Stdout, resp)
		return nil
	}

	return runInteractive(ctx, cfg, engine, logger)
}

// rebuildOnLaunch performs a full rebuild when requested explicitly, when
// configured to run at launch, when the store reports it has no usable
// contents (fresh or reset after a schema mismatch), or when the stored
// policy fingerprint no longer matches the configured one.
func rebuildOnLaunch(ctx context.Context, app *application, cfg *Config, db *index.DB, rebuilder *indexer.Rebuilder, logger *slog.Logger) error {
	policy := cfg.Index.Policy()

	need := app.rebuildOnly || cfg.Index.AutoRebuildOnLaunch || db.NeedsRebuild()
	if !need {
		st, err := db.Stats()
		if err != nil {
			return err
		}
		if st.Policy != policy.Fingerprint() {
			logger.Info("index was built under a different policy; rebuilding")
			need = true
		}
	}
	if !need {
		return nil
	}

	snap, err := rebuilder.Rebuild(ctx, policy)
	if err != nil {
		return fmt.Errorf("rebuild: %w", err)
	}
	if snap.Status == indexer.StatusFailed {
		return fmt.Errorf("rebuild failed: %w", snap.Err)
	}
	return nil
}

// runInteractive reads queries line by line from stdin and prints grouped
// results. Each line goes through the live dispatcher so a slow search can
// never deliver results for a superseded query.
func runInteractive(ctx context.Context, cfg *Config, engine *search.Engine, logger *slog.Logger) error {
	dispatcher := live.New(cfg.Search.Dispatch(), func(q string) (search.Response, error) {
		return engine.Search(q, cfg.Search.Options())
	})
	defer dispatcher.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(runCtx)

	// Deliveries printer.
	g.Go(func() error {
		for {
			select {
			case <-gCtx.Done():
				return nil
			case del, ok := <-dispatcher.Results():
				if !ok {
					return nil
				}
				if del.Err != nil {
					fmt.Fprintf(os.Stdout, "search failed: %v\n", del.Err)
					continue
				}
				printResponse(os.Stdout, del.Response)
			}
		}
	})

	// Stdin reader.
	g.Go(func() error {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			dispatcher.Submit(strings.TrimSpace(scanner.Text()))
		}
		cancel() // EOF or read error: wind down
		return scanner.Err()
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Stopped")
	return nil
}

func logRebuildEvents(logger *slog.Logger, events chan progress.Event) {
	for ev := range events {
		switch ev.Type {
		case progress.EventProgress:
			logger.Debug("rebuild progress",
				slog.Int("processed", ev.Processed),
				slog.String("path", ev.CurrentPath))
		case progress.EventCompleted:
			logger.Info("rebuild completed",
				slog.Int("entries", ev.Entries),
				slog.Int("warnings", ev.Warnings),
				slog.Duration("elapsed", ev.Elapsed))
		case progress.EventCancelled:
			logger.Info("rebuild cancelled", slog.Duration("elapsed", ev.Elapsed))
		case progress.EventFailed:
			logger.Error("rebuild failed", slog.String("error", ev.Err))
		}
	}
}

// printResponse renders results grouped by parent folder plus the metrics
// status line.
func printResponse(w io.Writer, resp search.Response) {
	for _, group := range resp.Grouped() {
		fmt.Fprintln(w, group.Folder)
		for _, e := range group.Entries {
			marker := ""
			if e.IsDir {
				marker = "/"
			}
			fmt.Fprintf(w, "  %s%s\n", e.Path, marker)
		}
	}
	m := resp.Metrics
	fmt.Fprintf(w, "Found: files %d, folders %d | FTS: %.1f%% (%d/%d) | %.1f ms\n",
		m.Files, m.Dirs, m.FullTextPercent, m.FullTextCount, m.TotalCount,
		float64(m.TotalElapsed.Microseconds())/1000.0)
}
