package fees

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"landledger/pkg/domain"
)

const (
	cacheKey = "landledger:fees:config"
	cacheTTL = 5 * time.Minute
)

// CachedStore is a Redis read-through decorator for the fee configuration.
// Every monetary transaction reads the config, so the hot path avoids the
// inner store; Replace writes through and invalidates. Cache failures fall
// back to the inner store rather than failing the transaction.
type CachedStore struct {
	inner  Store
	client *redis.Client
	logger *slog.Logger
}

func NewCachedStore(inner Store, client *redis.Client, logger *slog.Logger) *CachedStore {
	return &CachedStore{inner: inner, client: client, logger: logger}
}

type cachedConfig struct {
	AgencyBp     uint64 `json:"agency_bp"`
	GovernmentBp uint64 `json:"government_bp"`
	FlatFee      uint64 `json:"flat_fee"`
	AgentBp      uint64 `json:"agent_bp"`
	Enabled      bool   `json:"enabled"`
}

func (s *CachedStore) Get(ctx context.Context) (Config, error) {
	raw, err := s.client.Get(ctx, cacheKey).Bytes()
	if err == nil {
		var cached cachedConfig
		if err := json.Unmarshal(raw, &cached); err == nil {
			return Config{
				AgencyBp:     domain.BasisPoints(cached.AgencyBp),
				GovernmentBp: domain.BasisPoints(cached.GovernmentBp),
				FlatFee:      domain.Amount(cached.FlatFee),
				AgentBp:      domain.BasisPoints(cached.AgentBp),
				Enabled:      cached.Enabled,
			}, nil
		}
	} else if err != redis.Nil && s.logger != nil {
		s.logger.WarnContext(ctx, "fee config cache read failed", "error", err)
	}

	config, err := s.inner.Get(ctx)
	if err != nil {
		return Config{}, err
	}
	s.fill(ctx, config)
	return config, nil
}

func (s *CachedStore) Replace(ctx context.Context, config Config) error {
	if err := s.inner.Replace(ctx, config); err != nil {
		return err
	}
	if err := s.client.Del(ctx, cacheKey).Err(); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "fee config cache invalidation failed", "error", err)
	}
	return nil
}

func (s *CachedStore) fill(ctx context.Context, config Config) {
	raw, err := json.Marshal(cachedConfig{
		AgencyBp:     uint64(config.AgencyBp),
		GovernmentBp: uint64(config.GovernmentBp),
		FlatFee:      uint64(config.FlatFee),
		AgentBp:      uint64(config.AgentBp),
		Enabled:      config.Enabled,
	})
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, cacheKey, raw, cacheTTL).Err(); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "fee config cache fill failed", "error", err)
	}
}
