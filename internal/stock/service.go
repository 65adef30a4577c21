package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/juku001/SellazEngine/internal/shared"
)

// balanceTTL bounds staleness of the cached balance view. Stock mutations
// happen in the order workflows, so the cache is invalidated by expiry
// rather than by write hooks.
const balanceTTL = 30 * time.Second

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	ListByDealer(ctx context.Context, superDealerID int64) ([]Balance, error)
}

// Service serves the stock balance read side. Balances are cached in
// Redis and concurrent cache misses for the same dealer are collapsed
// through singleflight.
type Service struct {
	repo  RepositoryPort
	cache *redis.Client
	group singleflight.Group
}

// NewService constructs the stock service. cache may be nil, in which
// case every read goes to the database.
func NewService(repo RepositoryPort, cache *redis.Client) *Service {
	return &Service{repo: repo, cache: cache}
}

// BalanceForDealer returns the dealer's current stock positions.
func (s *Service) BalanceForDealer(ctx context.Context, principal shared.Principal) ([]Balance, error) {
	key := fmt.Sprintf("stock:balance:%d", principal.SuperDealerID)

	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key).Bytes()
		if err == nil {
			var balances []Balance
			if err := json.Unmarshal(raw, &balances); err == nil {
				return balances, nil
			}
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		balances, err := s.repo.ListByDealer(ctx, principal.SuperDealerID)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if raw, err := json.Marshal(balances); err == nil {
				s.cache.Set(ctx, key, raw, balanceTTL)
			}
		}
		return balances, nil
	})
	if err != nil {
		return nil, shared.Internal("Failed to load stock balance.", err)
	}
	balances, _ := v.([]Balance)
	return balances, nil
}

// Invalidate drops the cached balance for one dealer. Order workflows
// call this after a stock mutation commits.
func (s *Service) Invalidate(ctx context.Context, superDealerID int64) {
	if s.cache == nil {
		return
	}
	s.cache.Del(ctx, fmt.Sprintf("stock:balance:%d", superDealerID))
}
