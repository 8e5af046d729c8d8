package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/campuscare/wellbeing-chat/internal/auth"
	"github.com/campuscare/wellbeing-chat/internal/config"
	"github.com/campuscare/wellbeing-chat/internal/core"
	"github.com/campuscare/wellbeing-chat/internal/store"
)

// closer releases a resource on shutdown.
type closer func(ctx context.Context) error

// openStore connects the configured store driver.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := store.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		s, err := store.NewMongoStore(ctx, client, cfg.DBName)
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return s, nil
	case config.DriverSQLite:
		return store.NewSQLiteStore(cfg.DatabaseURL)
	case config.DriverMemory:
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
	}
}

// openRevocationList uses Redis when REDIS_URL is set so logouts are shared
// between instances.
func openRevocationList(ctx context.Context, cfg *config.Config) (auth.RevocationList, closer, error) {
	if cfg.RedisURL == "" {
		return auth.NewMemoryRevocationList(), func(context.Context) error { return nil }, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	list := auth.NewRedisRevocationList(client)
	return list, func(context.Context) error { return list.Close() }, nil
}

// buildComposer wires personas, the provider executor and the agents.
func buildComposer(ctx context.Context, cfg *config.Config) (*core.Composer, closer, error) {
	personas, err := core.LoadPersonas(cfg.PersonasFile)
	if err != nil {
		return nil, nil, err
	}

	executor, closeExecutor, err := core.NewExecutor(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s executor: %w", cfg.LLMProvider, err)
	}
	release := func(context.Context) error { return closeExecutor() }

	agents, err := core.NewAgents(personas, executor)
	if err != nil {
		_ = closeExecutor()
		return nil, nil, err
	}
	composer, err := core.NewComposer(agents,
		core.WithAgentTimeout(cfg.AgentTimeout),
		core.WithLogger(log.With(logrus.Fields{"component": "composer"})),
	)
	if err != nil {
		_ = closeExecutor()
		return nil, nil, err
	}

	log.Info("Composer ready", logrus.Fields{
		"provider": cfg.LLMProvider,
		"model":    cfg.LLMModel,
	})
	return composer, release, nil
}

// closeAll runs closers in reverse order and joins their errors.
func closeAll(ctx context.Context, closers []closer) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
