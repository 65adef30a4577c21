package biker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/juku001/SellazEngine/internal/shared"
)

func newOrderRouter(svc *Service) http.Handler {
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithPrincipal(req.Context(), bikerPrincipal())
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	handler.MountOrderRoutes(r)
	return r
}

// Complete and close are idempotent-style transitions exposed on PUT,
// matching activate.
func TestCompleteAndCloseServedOnPut(t *testing.T) {
	repo := newMemRepo()
	seedStock(repo, 100, 50, 1000)
	svc := newTestService(repo)

	order, err := svc.Request(context.Background(), bikerPrincipal(), []RequestItem{{ProductID: 100, Quantity: 10}})
	require.NoError(t, err)
	require.NoError(t, svc.Activate(context.Background(), bikerPrincipal(), order.ID))
	items, err := svc.OrderItems(context.Background(), bikerPrincipal(), order.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Sell(context.Background(), bikerPrincipal(), SellInput{
		OrderItemID: items[0].ID, CustomerName: "Asha", Location: "Kariakoo", Quantity: 6,
	}))
	require.NoError(t, svc.Return(context.Background(), bikerPrincipal(), ReturnInput{OrderItemID: items[0].ID, Quantity: 4, Reason: "unsold"}))

	router := newOrderRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/order/complete/%d", order.ID), nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, StatusActive, repo.orders[order.ID].Status)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, fmt.Sprintf("/order/complete/%d", order.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, StatusComplete, repo.orders[order.ID].Status)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, fmt.Sprintf("/order/close/%d", order.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, StatusClosed, repo.orders[order.ID].Status)
}
