package app

import (
	"context"

	"github.com/doeshing/adpost-go/internal/application/agent"
	"github.com/doeshing/adpost-go/internal/application/dedup"
	"github.com/doeshing/adpost-go/internal/application/doctor"
	"github.com/doeshing/adpost-go/internal/infrastructure/ai"
	"github.com/doeshing/adpost-go/internal/infrastructure/brief"
	"github.com/doeshing/adpost-go/internal/infrastructure/cache"
	"github.com/doeshing/adpost-go/internal/infrastructure/config"
	"github.com/doeshing/adpost-go/internal/infrastructure/policy"
	"github.com/doeshing/adpost-go/internal/infrastructure/publisher"
	"github.com/doeshing/adpost-go/internal/infrastructure/scheduler"
	"github.com/doeshing/adpost-go/internal/infrastructure/similarity"
	"github.com/doeshing/adpost-go/internal/infrastructure/storage"
	"github.com/doeshing/adpost-go/internal/pkg/logger"
	"github.com/doeshing/adpost-go/internal/ports"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	Agent          *agent.Service
	Guard          *dedup.Service
	DoctorService  *doctor.Service
	Scheduler      *scheduler.Cron
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	HistoryStore   ports.HistoryStore
	CacheStore     ports.CacheStore
	Logger         ports.Logger
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.NewStd(verbose)

	var store ports.HistoryStore
	switch cfg.Storage.Backend {
	case "sqlite":
		store = storage.NewSQLiteStore(cfg.Storage.Root, log)
	default:
		store = storage.NewFileStore(cfg.Storage.Root, log)
	}

	contentPolicy, err := policy.NewPolicy(cfg.Policy.RulesFile)
	if err != nil {
		// a broken custom rules file must not brick the CLI
		contentPolicy, err = policy.NewPolicy("")
		if err != nil {
			return nil, err
		}
	}

	guard := &dedup.Service{
		Store:  store,
		Scorer: similarity.NewTokenSetScorer(),
		Logger: log,
	}
	cacheStore := cache.NewFileCache()

	agentService := &agent.Service{
		ConfigProvider:  cfgLoader,
		BriefCollector:  brief.NewFileCollector(),
		ProviderFactory: ai.NewFactory(),
		Guard:           guard,
		Store:           store,
		Policy:          contentPolicy,
		Publisher:       publisher.NewInstagramClient(cfg.Posting, log),
		Cache:           cacheStore,
		Logger:          log,
	}

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Store:          store,
		Policy:         contentPolicy,
		Publisher:      agentService.Publisher,
	}

	return &Container{
		Agent:          agentService,
		Guard:          guard,
		DoctorService:  doctorService,
		Scheduler:      scheduler.New(log),
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		HistoryStore:   store,
		CacheStore:     cacheStore,
		Logger:         log,
	}, nil
}
