package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"tandem/internal/domain/currency"
)

const ratesKey = "tandem:rates"

// RateStore persists last-known exchange rates in a Redis hash keyed by
// currency pair, implementing currency.SnapshotStore. It exists so the
// stale-rate fallback survives process restarts.
type RateStore struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewRateStore(client *redis.Client, log zerolog.Logger) *RateStore {
	return &RateStore{
		client: client,
		log:    log.With().Str("component", "rate_store").Logger(),
	}
}

// Connect opens and verifies a Redis connection.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

type storedRate struct {
	Value     string    `json:"value"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Save writes one rate under its pair key. Snapshots deliberately keep only
// the newest rate per pair.
func (s *RateStore) Save(ctx context.Context, rate currency.Rate) error {
	payload, err := json.Marshal(storedRate{
		Value:     rate.Value.String(),
		FetchedAt: rate.FetchedAt,
	})
	if err != nil {
		return fmt.Errorf("encoding rate snapshot: %w", err)
	}

	if err := s.client.HSet(ctx, ratesKey, rate.Pair(), payload).Err(); err != nil {
		return fmt.Errorf("saving rate snapshot %s: %w", rate.Pair(), err)
	}
	return nil
}

// Load returns every persisted rate, marked as cached fallback. Entries that
// fail to decode are skipped with a warning rather than poisoning the load.
func (s *RateStore) Load(ctx context.Context) ([]currency.Rate, error) {
	entries, err := s.client.HGetAll(ctx, ratesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("loading rate snapshots: %w", err)
	}

	rates := make([]currency.Rate, 0, len(entries))
	for pair, raw := range entries {
		var stored storedRate
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			s.log.Warn().Err(err).Str("pair", pair).Msg("skipping undecodable rate snapshot")
			continue
		}
		rate, ok := decodePair(pair, stored)
		if !ok {
			s.log.Warn().Str("pair", pair).Msg("skipping malformed rate snapshot")
			continue
		}
		rates = append(rates, rate)
	}
	return rates, nil
}

func decodePair(pair string, stored storedRate) (currency.Rate, bool) {
	var from, to string
	if _, err := fmt.Sscanf(pair, "%3s/%3s", &from, &to); err != nil {
		return currency.Rate{}, false
	}
	value, err := decimal.NewFromString(stored.Value)
	if err != nil || !value.IsPositive() {
		return currency.Rate{}, false
	}
	return currency.Rate{
		From:      from,
		To:        to,
		Value:     value,
		FetchedAt: stored.FetchedAt,
		Source:    currency.SourceCachedFallback,
	}, true
}
