package prices

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis cache keys for the latest good scrape.
const (
	cacheKeyRegional = "prices:regional"
	cacheKeyBuying   = "prices:buying"
)

// DefaultCacheTTL bounds how stale a served price can be.
const DefaultCacheTTL = 5 * time.Minute

// RegionalPrice is one row of the regional price listing.
type RegionalPrice struct {
	Country       string  `json:"country"`
	Currency      string  `json:"currency"`
	PricePerGram  float64 `json:"pricePerGram"`
	PricePerOunce float64 `json:"pricePerOunce"`
	PricePerTola  float64 `json:"pricePerTola"`
}

// BuyingPrice is the single app-wide buying price block.
type BuyingPrice struct {
	BuyingPrice      float64 `json:"buyingPrice"`
	ChangePercentage float64 `json:"changePercentage"`
	LastUpdated      string  `json:"lastUpdated"`
}

// Service fetches and parses the public gold price listing, caching the
// latest good result in Redis so a source outage or markup break serves the
// last known data instead of zeros.
type Service struct {
	Fetcher  Fetcher
	Rdb      *redis.Client
	CacheTTL time.Duration
}

func (s *Service) ttl() time.Duration {
	if s.CacheTTL > 0 {
		return s.CacheTTL
	}
	return DefaultCacheTTL
}

// ListRegionalPrices returns the per-region price table.
func (s *Service) ListRegionalPrices(ctx context.Context) ([]RegionalPrice, error) {
	if s.Rdb != nil {
		if b, err := s.Rdb.Get(ctx, cacheKeyRegional).Bytes(); err == nil {
			var cached []RegionalPrice
			if json.Unmarshal(b, &cached) == nil {
				return cached, nil
			}
		}
	}

	page, err := s.Fetcher.Fetch(ctx, "/prices")
	if err != nil {
		return nil, err
	}
	out := parseRegional(page)
	if len(out) == 0 {
		return nil, errors.New("no prices found on source page")
	}

	if s.Rdb != nil {
		if b, err := json.Marshal(out); err == nil {
			if err := s.Rdb.Set(ctx, cacheKeyRegional, b, s.ttl()).Err(); err != nil {
				log.Warn().Err(err).Msg("regional price cache write failed")
			}
		}
	}
	return out, nil
}

// GetBuyingPrice returns the current buying price with its day change.
func (s *Service) GetBuyingPrice(ctx context.Context) (*BuyingPrice, error) {
	if s.Rdb != nil {
		if b, err := s.Rdb.Get(ctx, cacheKeyBuying).Bytes(); err == nil {
			var cached BuyingPrice
			if json.Unmarshal(b, &cached) == nil {
				return &cached, nil
			}
		}
	}

	page, err := s.Fetcher.Fetch(ctx, "/")
	if err != nil {
		return nil, err
	}
	out := parseBuying(page)
	if out.BuyingPrice == 0 {
		return nil, errors.New("buying price not found on source page")
	}
	if out.LastUpdated == "" {
		out.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	}

	if s.Rdb != nil {
		if b, err := json.Marshal(out); err == nil {
			if err := s.Rdb.Set(ctx, cacheKeyBuying, b, s.ttl()).Err(); err != nil {
				log.Warn().Err(err).Msg("buying price cache write failed")
			}
		}
	}
	return out, nil
}
