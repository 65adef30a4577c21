package dealer

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/juku001/SellazEngine/internal/platform/httpx"
	"github.com/juku001/SellazEngine/internal/shared"
)

// Handler exposes the dealer order workflow over HTTP.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: shared.NewValidator(),
	}
}

// MountRoutes registers the company-facing order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleListOrders)
	r.Post("/status", h.handleSetStatus)
	r.Post("/fulfill", h.handleFulfill)
}

// MountRequestRoute registers the dealer-facing order placement route.
func (h *Handler) MountRequestRoute(r chi.Router) {
	r.Post("/request", h.handleRequest)
}

// MountStockRoutes registers the dealer's own order listings, served
// under the stock prefix.
func (h *Handler) MountStockRoutes(r chi.Router) {
	r.Get("/orders", h.handleDealerOrders)
	r.Get("/orders/{id}/items", h.handleDealerOrderItems)
}

type requestOrderItem struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"required,gt=0"`
}

type requestOrderRequest struct {
	Products []requestOrderItem `json:"products" validate:"required,min=1,dive"`
}

var requestOrderMessages = map[string]string{
	"products.required":              "The products field is required.",
	"products.min":                   "The products field is required.",
	"products.*.product_id.required": "The product id field is required.",
	"products.*.product_id.gt":       "The product id must be greater than 0.",
	"products.*.quantity.required":   "The quantity field is required.",
	"products.*.quantity.gt":         "The quantity must be at least 1.",
}

func (h *Handler) handleRequest(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	var req requestOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, "Validation failed.", shared.FieldErrors{"request": {"Malformed request body."}})
		return
	}
	if verr := shared.ValidateStruct(h.validator, req, requestOrderMessages); verr != nil {
		httpx.Fail(w, verr.Code, verr.Message, verr.Fields)
		return
	}

	items := make([]RequestItem, 0, len(req.Products))
	for _, p := range req.Products {
		items = append(items, RequestItem{ProductID: p.ProductID, Quantity: p.Quantity})
	}

	order, err := h.service.Request(r.Context(), principal, items)
	if err != nil {
		h.logger.Error("request order", slog.Any("error", err), slog.Int64("user_id", principal.ID))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Order placed successfully.", map[string]any{
		"order_id": order.ID,
		"total":    order.Total,
	})
}

type setStatusRequest struct {
	OrderID int64  `json:"order_id" validate:"required,gt=0"`
	Status  string `json:"status" validate:"required,oneof=approve reject"`
}

var setStatusMessages = map[string]string{
	"order_id.required": "The order id field is required.",
	"order_id.gt":       "The order id must be greater than 0.",
	"status.required":   "The status field is required.",
	"status.oneof":      "The status must be approve or reject.",
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	var req setStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, "Validation failed.", shared.FieldErrors{"request": {"Malformed request body."}})
		return
	}
	if verr := shared.ValidateStruct(h.validator, req, setStatusMessages); verr != nil {
		httpx.Fail(w, verr.Code, verr.Message, verr.Fields)
		return
	}

	status := StatusApproved
	if req.Status == "reject" {
		status = StatusRejected
	}

	order, err := h.service.SetStatus(r.Context(), principal, req.OrderID, status)
	if err != nil {
		h.logger.Error("set order status", slog.Any("error", err), slog.Int64("order_id", req.OrderID))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Order status updated successfully.", order)
}

type fulfillRequest struct {
	OrderID int64 `json:"order_id" validate:"required,gt=0"`
}

var fulfillMessages = map[string]string{
	"order_id.required": "The order id field is required.",
	"order_id.gt":       "The order id must be greater than 0.",
}

func (h *Handler) handleFulfill(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	var req fulfillRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, "Validation failed.", shared.FieldErrors{"request": {"Malformed request body."}})
		return
	}
	if verr := shared.ValidateStruct(h.validator, req, fulfillMessages); verr != nil {
		httpx.Fail(w, verr.Code, verr.Message, verr.Fields)
		return
	}

	order, err := h.service.Fulfill(r.Context(), principal, req.OrderID)
	if err != nil {
		h.logger.Error("fulfill order", slog.Any("error", err), slog.Int64("order_id", req.OrderID))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Order fulfilled successfully.", order)
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	orders, err := h.service.ListForCompany(r.Context(), principal)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if orders == nil {
		orders = []Order{}
	}
	httpx.Success(w, "List of dealer orders.", orders)
}

func (h *Handler) handleDealerOrders(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	orders, err := h.service.ListForDealer(r.Context(), principal)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if orders == nil {
		orders = []Order{}
	}
	httpx.Success(w, "List of your orders.", orders)
}

func (h *Handler) handleDealerOrderItems(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || orderID <= 0 {
		httpx.Fail(w, http.StatusNotFound, "Order not found.", nil)
		return
	}

	items, svcErr := h.service.DealerOrderItems(r.Context(), principal, orderID)
	if svcErr != nil {
		httpx.RespondError(w, svcErr)
		return
	}
	if items == nil {
		items = []OrderItem{}
	}
	httpx.Success(w, "List of order items.", items)
}
