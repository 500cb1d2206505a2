package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/altegra/catalog-backend/internal/data/repos"
	"github.com/altegra/catalog-backend/internal/db"
	"github.com/altegra/catalog-backend/internal/platform/elastic"
	"github.com/altegra/catalog-backend/internal/platform/logger"
	"github.com/altegra/catalog-backend/internal/platform/ready"
	"github.com/altegra/catalog-backend/internal/services"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *gorm.DB
	Repos    repos.Repos
	Index    elastic.SearchIndex
	Pipeline services.PipelineService

	pg *db.PostgresService
}

// New wires the full application: logger, configuration, storage, search
// index and the pipeline service. Both backends are polled until ready, so a
// batch container can start alongside freshly booted databases.
func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	var pg *db.PostgresService
	connect := func(ctx context.Context) error {
		svc, err := db.NewPostgresService(log)
		if err != nil {
			return err
		}
		pg = svc
		return nil
	}
	if err := ready.Wait(ctx, log, "postgres", connect, cfg.ReadyTimeout, cfg.ReadyInterval); err != nil {
		log.Sync()
		return nil, fmt.Errorf("wait for postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}

	esCfg, err := elastic.ResolveConfigFromEnv()
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("resolve search config: %w", err)
	}
	index, err := elastic.NewSearchIndex(log, esCfg)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init search index: %w", err)
	}
	if err := ready.Wait(ctx, log, "elasticsearch", index.Ping, cfg.ReadyTimeout, cfg.ReadyInterval); err != nil {
		log.Sync()
		return nil, fmt.Errorf("wait for elasticsearch: %w", err)
	}

	reposet := repos.New(pg.DB(), log)

	pipeline, err := services.NewPipelineService(pg.DB(), log, &reposet, index, services.PipelineOptions{
		MarketplaceID:   cfg.MarketplaceID,
		IndexBatchSize:  cfg.IndexBatchSize,
		ScoreThreshold:  cfg.SimilarScoreThreshold,
		MaxSimilar:      cfg.SimilarMaxItems,
		LinkConcurrency: cfg.LinkConcurrency,
		SkipLinked:      cfg.LinkSkipLinked,
	})
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init pipeline service: %w", err)
	}

	return &App{
		Log:      log,
		Cfg:      cfg,
		DB:       pg.DB(),
		Repos:    reposet,
		Index:    index,
		Pipeline: pipeline,
		pg:       pg,
	}, nil
}

// Close releases backend connections and flushes the logger.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("close postgres", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
