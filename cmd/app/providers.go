package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/voyora/tripweaver/internal/domain/activity"
	"github.com/voyora/tripweaver/internal/domain/advisor"
	"github.com/voyora/tripweaver/internal/domain/logistics"
	"github.com/voyora/tripweaver/internal/domain/meals"
	"github.com/voyora/tripweaver/internal/domain/planner"
	"github.com/voyora/tripweaver/internal/domain/trip"
	"github.com/voyora/tripweaver/internal/domain/validate"
	"github.com/voyora/tripweaver/internal/infra/advisorstore"
	"github.com/voyora/tripweaver/internal/infra/catalog"
	"github.com/voyora/tripweaver/internal/infra/config"
	"github.com/voyora/tripweaver/internal/infra/llm/chatgpt"
)

func provideAdvisorConfig(cfg *config.Config) advisor.Config {
	return advisor.Config{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Prompt:      cfg.Advisor.Prompt,
		CallCap:     cfg.Advisor.CallCap,
		CallTimeout: cfg.Advisor.CallTimeout,
		CacheTTL:    cfg.Advisor.CacheTTL,
	}
}

// provideAdvisorChatClient returns a nil client when no API key is
// configured; the advisor then runs on fallback rules alone.
func provideAdvisorChatClient(cfg *config.Config, logger *slog.Logger) advisor.ChatClient {
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		logger.Info("llm api key not set, advisor oracle disabled")
		return nil
	}
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
	if err != nil {
		logger.Error("failed to build chatgpt client, advisor oracle disabled", "error", err)
		return nil
	}
	return client
}

func provideAdvisorStore(cfg *config.Config, logger *slog.Logger) advisor.Store {
	if cfg.Advisor.Redis.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return advisorstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return advisorstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
		} else {
			logger.Info("advisor valkey store enabled", "addr", cfg.Advisor.Redis.Addr)
			return advisorstore.NewValkeyStore(client, "advisor")
		}
	}
	return advisorstore.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Advisor.Redis.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Advisor.Redis.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Advisor.Redis.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideCatalogRepository(cfg *config.Config, logger *slog.Logger) trip.CatalogRepository {
	fallback := catalog.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Catalog.Postgres.DSN)
	if dsn == "" {
		logger.Info("catalog postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.Catalog.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Catalog.Postgres.MaxConns
	}
	if cfg.Catalog.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Catalog.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("catalog postgres repository enabled")
	return catalog.NewPostgresRepository(pool)
}

func providePlannerConfig(cfg *config.Config) planner.Config {
	out := planner.DefaultConfig()
	out.DayStartClock = cfg.Engine.DayStartClock
	out.DayEndClock = cfg.Engine.DayEndClock
	return out
}

func provideMealsConfig(cfg *config.Config) meals.Config {
	return meals.DefaultConfig()
}

func provideActivityConfig(cfg *config.Config) activity.Config {
	out := activity.DefaultConfig()
	out.GapFillMinMinutes = cfg.Engine.GapFillMinutes
	out.ClosingBufferMinutes = cfg.Engine.ClosingBufferMinutes
	return out
}

func provideLogisticsConfig(cfg *config.Config) logistics.Config {
	out := logistics.DefaultConfig()
	out.AirportBufferMinutes = cfg.Engine.AirportBufferMinutes
	return out
}

func provideValidateConfig(cfg *config.Config) validate.Config {
	out := validate.DefaultConfig()
	out.OperatingRadiusKm = cfg.Engine.OperatingRadiusKm
	return out
}
