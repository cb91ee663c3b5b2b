// Package app wires configuration, storage, source adapters and the HTTP
// server into a runnable application.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"RegCollector/internal/collect"
	"RegCollector/internal/config"
	"RegCollector/internal/infrastructure/attach"
	"RegCollector/internal/infrastructure/extract"
	"RegCollector/internal/infrastructure/scrapeapi"
	"RegCollector/internal/infrastructure/translate"
	"RegCollector/internal/preview"
	"RegCollector/internal/server"
	"RegCollector/internal/source"
	"RegCollector/internal/storage"
	"RegCollector/internal/stream"
)

// App owns the application's long-lived resources.
type App struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sql.DB
	server *server.Server
}

// New builds the application from config.
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	articles := storage.NewArticleStore(db)
	jobs := storage.NewJobStore()
	broker := stream.NewBroker(cfg.Stream.Backlog)

	registry := source.NewRegistry()
	for _, src := range cfg.Sources {
		switch src.Name {
		case "fcc":
			registry.Register(source.NewFCCAdapter(src.URL, nil, logger))
		case "ofcom":
			registry.Register(source.NewOfcomAdapter(src.URL, nil, logger))
		case "soumu":
			registry.Register(source.NewSoumuAdapter(src.URL, src.Keywords, nil, logger))
		default:
			logger.Warn("unknown source in config, skipping", "source", src.Name)
		}
	}

	aggregator := preview.NewAggregator(registry, articles, cfg.Collect.PreviewMax, logger)
	runner := collect.NewRunner(collect.RunnerDeps{
		Articles:    articles,
		Jobs:        jobs,
		Events:      broker,
		Scraper:     scrapeapi.New(cfg.ScrapeAPI, nil, logger),
		Extractor:   extract.New(),
		Translator:  translate.New(cfg.Translator, nil, logger),
		Attachments: attach.New(cfg.Attachments.Dir, nil),
		Workers:     cfg.Collect.Workers,
		Logger:      logger,
	})

	srv := server.New(cfg.Server.Addr, aggregator, runner, articles, jobs, broker, cfg.Sources, logger)

	return &App{cfg: cfg, logger: logger, db: db, server: srv}, nil
}

// Run serves the API until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		a.logger.Warn("database not reachable at startup", "error", err)
	}

	err := a.server.ListenAndServe(ctx)

	if cerr := a.db.Close(); cerr != nil {
		a.logger.Error("close database", "error", cerr)
	}
	return err
}
