package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rushteam/brewrec/config"
	_ "github.com/rushteam/brewrec/config/builders"
	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/filter"
	"github.com/rushteam/brewrec/pipeline"
	"github.com/rushteam/brewrec/pkg/logging"
	"github.com/rushteam/brewrec/profile"
	"github.com/rushteam/brewrec/recall"
	"github.com/rushteam/brewrec/store"
)

// App 按配置装配全部服务。
type App struct {
	Config *config.Config
	Repo   store.Repository
	KV     core.KeyValueStore

	Feed        *FeedService
	Venues      *VenueService
	Behaviors   *BehaviorService
	Trending    *TrendingPublisher
	Preferences *profile.Extractor
	Popularity  *profile.PopularityScorer
}

// NewApp 打开存储、导入种子数据（可选）并构建 Pipeline。cfg 为 nil 时使用默认配置。
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logging.Component("app")

	repo, err := store.OpenRepository(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	kv, err := store.OpenKeyValue(ctx, cfg.Store.RedisAddr, cfg.Store.RedisDB)
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("open key-value store: %w", err)
	}
	app := &App{Config: cfg, Repo: repo, KV: kv}

	if err := app.wire(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	log.Info().
		Str("store", cfg.Store.Driver).
		Str("kv", kv.Name()).
		Str("venue_profile", app.Venues.Ranker.Profile.Name).
		Msg("brewrec ready")
	return app, nil
}

func (a *App) wire(ctx context.Context) error {
	cfg := a.Config
	recordWeights, err := cfg.Recommend.BeverageWeightTable()
	if err != nil {
		return err
	}

	if cfg.Store.SeedFile != "" {
		seed, err := store.LoadSeedFile(cfg.Store.SeedFile)
		if err != nil {
			return err
		}
		if err := seed.Apply(ctx, a.Repo, time.Now(), recordWeights.Weight); err != nil {
			return fmt.Errorf("apply seed: %w", err)
		}
	}

	p, err := a.buildPipeline()
	if err != nil {
		return err
	}
	a.Feed = &FeedService{
		Repo:            a.Repo,
		Pipeline:        p,
		Published:       &recall.Hot{Store: a.KV, Key: cfg.Trending.Key},
		CandidateWindow: cfg.Recommend.CandidateWindow,
		CandidateLimit:  cfg.Recommend.CandidateLimit,
		DefaultSize:     cfg.Recommend.DefaultSize,
	}

	a.Venues, err = NewVenueService(a.Repo, cfg.Venue.Profile)
	if err != nil {
		return err
	}
	a.Venues.RadiusKm = cfg.Venue.RadiusKm
	a.Venues.DefaultLimit = cfg.Venue.DefaultLimit

	a.Behaviors = &BehaviorService{Writer: a.Repo, Weights: recordWeights}
	if cfg.Recommend.SeenBloom {
		a.Behaviors.Seen = filter.NewSeenBloom(a.KV)
	}

	a.Trending = &TrendingPublisher{
		Catalog: a.Repo,
		KV:      a.KV,
		Key:     cfg.Trending.Key,
		TTL:     cfg.Trending.TTL,
		Size:    cfg.Trending.Size,
	}

	a.Preferences = profile.NewExtractor(a.Repo, a.Repo)
	a.Preferences.Weights = recordWeights
	a.Popularity = profile.NewPopularityScorer(a.Repo, a.Repo)
	a.Popularity.Weights = recordWeights
	return nil
}

// buildPipeline 优先使用配置中的 Pipeline YAML，否则使用内置 Pipeline。
func (a *App) buildPipeline() (*pipeline.Pipeline, error) {
	pc := a.Config.DefaultPipelineConfig()
	if path := a.Config.Recommend.Pipeline; path != "" {
		loaded, err := pipeline.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load pipeline %s: %w", path, err)
		}
		pc = loaded
	}
	if err := config.ValidatePipelineConfig(pc); err != nil {
		return nil, err
	}
	return pc.BuildPipeline(config.DefaultFactory(), pipeline.Deps{Repository: a.Repo, KV: a.KV})
}

// Close 释放存储连接。
func (a *App) Close() error {
	var errs []error
	if a.Repo != nil {
		errs = append(errs, a.Repo.Close())
	}
	if a.KV != nil {
		errs = append(errs, a.KV.Close())
	}
	return errors.Join(errs...)
}
