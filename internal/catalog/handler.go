package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/juku001/SellazEngine/internal/platform/httpx"
	"github.com/juku001/SellazEngine/internal/shared"
)

// Handler exposes company and product management over HTTP.
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

// MountRoutes registers the catalog read routes, open to any
// authenticated role.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/companies", h.handleListCompanies)
	r.Get("/companies/{id}/products", h.handleListProducts)
	r.Get("/products", h.handleOwnProducts)
}

// MountAdminRoutes registers the catalog write routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/companies", h.handleCreateCompany)
	r.Post("/products", h.handleCreateProduct)
}

type createCompanyRequest struct {
	Name string `json:"name" validate:"required,min=2"`
}

var companyMessages = map[string]string{
	"name.required": "The name field is required.",
	"name.min":      "The name must be at least 2 characters.",
}

func (h *Handler) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req createCompanyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, "Validation failed.", shared.FieldErrors{"request": {"Malformed request body."}})
		return
	}
	if verr := shared.ValidateStruct(h.validator, req, companyMessages); verr != nil {
		httpx.Fail(w, verr.Code, verr.Message, verr.Fields)
		return
	}

	company, err := h.service.CreateCompany(r.Context(), req.Name)
	if err != nil {
		h.logger.Error("create company", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Company added successfully.", company)
}

func (h *Handler) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.service.ListCompanies(r.Context())
	if err != nil {
		h.logger.Error("list companies", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if companies == nil {
		companies = []Company{}
	}
	httpx.Success(w, "List of all companies.", companies)
}

type createProductRequest struct {
	CompanyID    int64   `json:"company_id" validate:"required,gt=0"`
	Name         string  `json:"name" validate:"required"`
	Brand        string  `json:"brand" validate:"required"`
	CompanyPrice float64 `json:"company_price" validate:"required,gt=0"`
}

var productMessages = map[string]string{
	"company_id.required":    "The company id field is required.",
	"company_id.gt":          "The company id must be greater than 0.",
	"name.required":          "The name field is required.",
	"brand.required":         "The brand field is required.",
	"company_price.required": "The company price field is required.",
	"company_price.gt":       "The company price must be greater than 0.",
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, "Validation failed.", shared.FieldErrors{"request": {"Malformed request body."}})
		return
	}
	if verr := shared.ValidateStruct(h.validator, req, productMessages); verr != nil {
		httpx.Fail(w, verr.Code, verr.Message, verr.Fields)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), Product{
		CompanyID:    req.CompanyID,
		Name:         req.Name,
		Brand:        req.Brand,
		CompanyPrice: req.CompanyPrice,
	})
	if err != nil {
		h.logger.Error("create product", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Product added successfully.", product)
}

// handleOwnProducts lists the catalog of the caller's own company.
func (h *Handler) handleOwnProducts(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}

	products, err := h.service.ListProducts(r.Context(), principal.CompanyID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if products == nil {
		products = []Product{}
	}
	httpx.Success(w, "List of company products.", products)
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || companyID <= 0 {
		httpx.Fail(w, http.StatusNotFound, "Company not found.", nil)
		return
	}

	products, svcErr := h.service.ListProducts(r.Context(), companyID)
	if svcErr != nil {
		httpx.RespondError(w, svcErr)
		return
	}
	if products == nil {
		products = []Product{}
	}
	httpx.Success(w, "List of company products.", products)
}
