package stock

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/juku001/SellazEngine/internal/platform/httpx"
	"github.com/juku001/SellazEngine/internal/shared"
)

// Handler exposes the stock balance view over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the stock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/balance", h.handleBalance)
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	balances, err := h.service.BalanceForDealer(r.Context(), principal)
	if err != nil {
		h.logger.Error("stock balance", slog.Any("error", err), slog.Int64("super_dealer_id", principal.SuperDealerID))
		httpx.RespondError(w, err)
		return
	}
	if balances == nil {
		balances = []Balance{}
	}
	httpx.Success(w, "Current stock balance.", balances)
}
