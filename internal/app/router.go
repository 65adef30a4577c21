package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/juku001/SellazEngine/internal/auth"
	"github.com/juku001/SellazEngine/internal/biker"
	"github.com/juku001/SellazEngine/internal/catalog"
	"github.com/juku001/SellazEngine/internal/dealer"
	"github.com/juku001/SellazEngine/internal/observability"
	"github.com/juku001/SellazEngine/internal/platform/httpx"
	"github.com/juku001/SellazEngine/internal/shared"
	"github.com/juku001/SellazEngine/internal/stock"
	"github.com/juku001/SellazEngine/jobs"
)

// RouterDeps aggregates everything the HTTP surface needs.
type RouterDeps struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	Pool  *pgxpool.Pool
	Redis *redis.Client

	AuthMiddleware auth.Middleware
	Auth           *auth.Handler
	Catalog        *catalog.Handler
	Dealer         *dealer.Handler
	Stock          *stock.Handler
	Biker          *biker.Handler
	Jobs           *jobs.Handler
}

// NewRouter builds the chi router with the full middleware stack and
// every mounted handler.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: deps.Logger, Config: deps.Config, Metrics: deps.Metrics}) {
		r.Use(mw)
	}

	r.Get("/healthz", healthHandler(deps))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}
	if deps.Jobs != nil {
		r.Route("/jobs", deps.Jobs.MountRoutes)
	}

	deps.Auth.MountPublicRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)

		deps.Auth.MountRoutes(r)
		deps.Catalog.MountRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMiddleware.Require(shared.CapManageProducts))
			deps.Catalog.MountAdminRoutes(r)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(deps.AuthMiddleware.Require(shared.CapPlaceDealerOrders))
				deps.Dealer.MountRequestRoute(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(deps.AuthMiddleware.Require(shared.CapReviewDealerOrders))
				deps.Dealer.MountRoutes(r)
			})
		})

		r.Route("/stock", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.Require(shared.CapViewDealerStock))
			deps.Stock.MountRoutes(r)
			deps.Dealer.MountStockRoutes(r)
		})

		r.Route("/biker", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(deps.AuthMiddleware.Require(shared.CapOperateBikerOrders))
				deps.Biker.MountOrderRoutes(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(deps.AuthMiddleware.Require(shared.CapRecordBikerSales))
				deps.Biker.MountLedgerRoutes(r)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.Fail(w, http.StatusNotFound, "Route not found.", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpx.Fail(w, http.StatusMethodNotAllowed, "Method not allowed.", nil)
	})

	return r
}

// healthHandler pings the datastore and cache with a short deadline.
func healthHandler(deps RouterDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		healthy := true
		if deps.Pool != nil {
			if err := deps.Pool.Ping(ctx); err != nil {
				checks["postgres"] = err.Error()
				healthy = false
			} else {
				checks["postgres"] = "ok"
			}
		}
		if deps.Redis != nil {
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				checks["redis"] = err.Error()
				healthy = false
			} else {
				checks["redis"] = "ok"
			}
		}

		if !healthy {
			httpx.Fail(w, http.StatusServiceUnavailable, "Service degraded.", checks)
			return
		}
		httpx.Success(w, "Service healthy.", checks)
	}
}
