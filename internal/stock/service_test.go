package stock

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/juku001/SellazEngine/internal/shared"
)

type countingRepo struct {
	calls    int
	balances []Balance
}

func (r *countingRepo) ListByDealer(_ context.Context, _ int64) ([]Balance, error) {
	r.calls++
	return r.balances, nil
}

func dealerPrincipal() shared.Principal {
	return shared.Principal{ID: 10, Role: shared.RoleSuperDealer, CompanyID: 1, SuperDealerID: 5}
}

func TestBalanceForDealerCachesReads(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := &countingRepo{balances: []Balance{
		{ProductID: 100, Name: "Cola 500ml", Brand: "Fizz", Quantity: 40, UnitPrice: 1000},
	}}
	svc := NewService(repo, client)

	first, err := svc.BalanceForDealer(context.Background(), dealerPrincipal())
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, 1, repo.calls)

	second, err := svc.BalanceForDealer(context.Background(), dealerPrincipal())
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.calls, "second read served from cache")
}

func TestInvalidateDropsCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := &countingRepo{balances: []Balance{{ProductID: 100, Quantity: 40, UnitPrice: 1000}}}
	svc := NewService(repo, client)

	_, err := svc.BalanceForDealer(context.Background(), dealerPrincipal())
	require.NoError(t, err)

	repo.balances[0].Quantity = 30
	svc.Invalidate(context.Background(), 5)

	fresh, err := svc.BalanceForDealer(context.Background(), dealerPrincipal())
	require.NoError(t, err)
	require.Equal(t, int64(30), fresh[0].Quantity)
	require.Equal(t, 2, repo.calls)
}

func TestBalanceWithoutCache(t *testing.T) {
	repo := &countingRepo{balances: []Balance{{ProductID: 100, Quantity: 40, UnitPrice: 1000}}}
	svc := NewService(repo, nil)

	for range 3 {
		_, err := svc.BalanceForDealer(context.Background(), dealerPrincipal())
		require.NoError(t, err)
	}
	require.Equal(t, 3, repo.calls)
}
