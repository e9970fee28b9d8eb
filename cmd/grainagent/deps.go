package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/redis/go-redis/v9"
	"github.com/tbxark/grainagent/cache"
	"github.com/tbxark/grainagent/config"
	"github.com/tbxark/grainagent/store"
	"github.com/tbxark/grainagent/types"
)

func newChatModel(ctx context.Context, c config.LLMConfig) (model.ToolCallingChatModel, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("llm.api_key (or OPENAI_API_KEY) is required")
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  c.APIKey,
		Model:   c.Model,
		BaseURL: c.BaseURL,
		Timeout: c.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	return cm, nil
}

// openCatalog returns nil when no catalog path is configured.
func openCatalog(c config.CatalogConfig) (*store.Store, error) {
	if c.Path == "" {
		return nil, nil
	}
	s, err := store.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", c.Path, err)
	}
	return s, nil
}

type caches struct {
	aliases  cache.Cache[map[string]string]
	sessions cache.Cache[types.AppState]
	close    func() error
}

func newCaches(c config.CacheConfig) *caches {
	if c.Backend == config.CacheRedis {
		client := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		slog.Info("Using redis cache", "addr", c.RedisAddr, "ttl", c.TTL)
		return &caches{
			aliases:  cache.NewRedisCache[map[string]string](client, c.TTL),
			sessions: cache.NewRedisCache[types.AppState](client, 0),
			close:    client.Close,
		}
	}
	return &caches{
		aliases:  cache.NewMemoryCache[map[string]string](c.TTL),
		sessions: cache.NewMemoryCache[types.AppState](0),
		close:    func() error { return nil },
	}
}
