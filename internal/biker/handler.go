package biker

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/juku001/SellazEngine/internal/platform/httpx"
	"github.com/juku001/SellazEngine/internal/shared"
)

// Handler exposes the biker order workflow over HTTP.
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

// MountOrderRoutes registers the order lifecycle routes.
func (h *Handler) MountOrderRoutes(r chi.Router) {
	r.Post("/order/request", h.handleRequest)
	r.Put("/order/activate/{id}", h.handleActivate)
	r.Delete("/order/delete/{id}", h.handleDelete)
	r.Put("/order/complete/{id}", h.handleComplete)
	r.Put("/order/close/{id}", h.handleClose)
	r.Get("/orders", h.handleListOrders)
	r.Get("/orders/{id}/items", h.handleOrderItems)
}

// MountLedgerRoutes registers the sale and return ledger routes.
func (h *Handler) MountLedgerRoutes(r chi.Router) {
	r.Post("/sell", h.handleSell)
	r.Post("/return", h.handleReturn)
}

type requestOrderItem struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"required,min=1"`
}

type requestOrderRequest struct {
	Products []requestOrderItem `json:"products" validate:"required,min=1,dive"`
}

var requestOrderMessages = map[string]string{
	"products.required":              "Please provide at least one product.",
	"products.min":                   "You must add at least one product.",
	"products.*.product_id.required": "Each product must have a product ID.",
	"products.*.product_id.gt":       "Each product must have a product ID.",
	"products.*.quantity.required":   "Each product must have a quantity.",
	"products.*.quantity.min":        "Quantity must be at least 1.",
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
		h.logger.Error("biker request order", slog.Any("error", err), slog.Int64("user_id", principal.ID))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Order placed successfully.", map[string]any{
		"order_id": order.ID,
		"total":    order.TotalAmount,
	})
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	principal, orderID, ok := h.principalAndID(w, r)
	if !ok {
		return
	}
	if err := h.service.Activate(r.Context(), principal, orderID); err != nil {
		h.logger.Error("activate order", slog.Any("error", err), slog.Int64("order_id", orderID))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Order activated and stock deducted successfully.", nil)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	principal, orderID, ok := h.principalAndID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), principal, orderID); err != nil {
		h.logger.Error("delete order", slog.Any("error", err), slog.Int64("order_id", orderID))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Order deleted successfully.", nil)
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	principal, orderID, ok := h.principalAndID(w, r)
	if !ok {
		return
	}
	if err := h.service.Complete(r.Context(), principal, orderID); err != nil {
		h.logger.Error("complete order", slog.Any("error", err), slog.Int64("order_id", orderID))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Biker order completed successfully with full reconciliation.", nil)
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	principal, orderID, ok := h.principalAndID(w, r)
	if !ok {
		return
	}
	result, err := h.service.Close(r.Context(), principal, orderID)
	if err != nil {
		h.logger.Error("close order", slog.Any("error", err), slog.Int64("order_id", orderID))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Order closed and commission recorded.", result)
}

type sellRequest struct {
	OrderItemID  int64  `json:"order_item_id" validate:"required,gt=0"`
	CustomerName string `json:"customer_name" validate:"required,max=255"`
	Location     string `json:"location" validate:"required,max=255"`
	Quantity     int64  `json:"quantity" validate:"required,min=1"`
}

var sellMessages = map[string]string{
	"order_item_id.required": "Order item ID is required.",
	"order_item_id.gt":       "Order item ID is required.",
	"customer_name.required": "Please provide the customer name.",
	"location.required":      "Please provide the location of the sale.",
	"quantity.required":      "Please provide quantity sold.",
	"quantity.min":           "You must sell at least one item.",
}

func (h *Handler) handleSell(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	var req sellRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, "Validation failed.", shared.FieldErrors{"request": {"Malformed request body."}})
		return
	}
	if verr := shared.ValidateStruct(h.validator, req, sellMessages); verr != nil {
		httpx.Fail(w, verr.Code, verr.Message, verr.Fields)
		return
	}

	err := h.service.Sell(r.Context(), principal, SellInput{
		OrderItemID:  req.OrderItemID,
		CustomerName: req.CustomerName,
		Location:     req.Location,
		Quantity:     req.Quantity,
	})
	if err != nil {
		h.logger.Error("record sale", slog.Any("error", err), slog.Int64("order_item_id", req.OrderItemID))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Sale recorded successfully.", nil)
}

type returnRequest struct {
	OrderItemID int64  `json:"order_item_id" validate:"required,gt=0"`
	Quantity    int64  `json:"quantity" validate:"required,min=1"`
	Reason      string `json:"reason" validate:"omitempty,max=255"`
}

var returnMessages = map[string]string{
	"order_item_id.required": "Order item ID is required.",
	"order_item_id.gt":       "Order item ID is required.",
	"quantity.required":      "Please provide quantity to return.",
	"quantity.min":           "You must return at least one item.",
	"reason.max":             "Reason must not exceed 255 characters.",
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	var req returnRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, "Validation failed.", shared.FieldErrors{"request": {"Malformed request body."}})
		return
	}
	if verr := shared.ValidateStruct(h.validator, req, returnMessages); verr != nil {
		httpx.Fail(w, verr.Code, verr.Message, verr.Fields)
		return
	}

	err := h.service.Return(r.Context(), principal, ReturnInput{
		OrderItemID: req.OrderItemID,
		Quantity:    req.Quantity,
		Reason:      req.Reason,
	})
	if err != nil {
		h.logger.Error("record return", slog.Any("error", err), slog.Int64("order_item_id", req.OrderItemID))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Items returned successfully.", nil)
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	orders, err := h.service.ListOrders(r.Context(), principal)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if orders == nil {
		orders = []Order{}
	}
	httpx.Success(w, "List of your orders.", orders)
}

func (h *Handler) handleOrderItems(w http.ResponseWriter, r *http.Request) {
	principal, orderID, ok := h.principalAndID(w, r)
	if !ok {
		return
	}

	items, err := h.service.OrderItems(r.Context(), principal, orderID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []OrderItem{}
	}
	httpx.Success(w, "List of order items.", items)
}

func (h *Handler) principalAndID(w http.ResponseWriter, r *http.Request) (shared.Principal, int64, bool) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "Unauthenticated.", nil)
		return shared.Principal{}, 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Fail(w, http.StatusNotFound, "Order not found.", nil)
		return shared.Principal{}, 0, false
	}
	return principal, id, true
}
