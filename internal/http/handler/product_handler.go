package handler

import (
	"net/http"

	"github.com/sandeepkv93/bazar-universal-api/internal/domain"
	"github.com/sandeepkv93/bazar-universal-api/internal/http/response"
	"github.com/sandeepkv93/bazar-universal-api/internal/observability"
	"github.com/sandeepkv93/bazar-universal-api/internal/service"
)

type ProductHandler struct {
	svc service.ProductService
}

func NewProductHandler(svc service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

type createProductRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Brand       *string  `json:"brand"`
	Rating      *float64 `json:"rating"`
	Stock       *int     `json:"stock"`
	Images      []string `json:"images"`
	Features    []string `json:"features"`
}

func (req createProductRequest) missingFields() []string {
	var missing []string
	if req.Title == nil {
		missing = append(missing, "title")
	}
	if req.Price == nil {
		missing = append(missing, "price")
	}
	if req.Category == nil {
		missing = append(missing, "category")
	}
	return missing
}

func (req createProductRequest) toInput() service.CreateProductInput {
	in := service.CreateProductInput{
		Title:       *req.Title,
		Description: req.Description,
		Price:       *req.Price,
		Category:    *req.Category,
		Brand:       req.Brand,
		Images:      req.Images,
		Features:    req.Features,
	}
	if req.Rating != nil {
		in.Rating = *req.Rating
	}
	if req.Stock != nil {
		in.Stock = *req.Stock
	}
	return in
}

type productSearchResponse struct {
	Products   []domain.Product `json:"products"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	TotalPages int              `json:"total_pages"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		response.Error(w, r, http.StatusUnprocessableEntity, codeValidation, err.Error(), nil)
		return
	}
	products, err := h.svc.List(r.Context(), window)
	if err != nil {
		writeServiceError(w, r, err, "list products")
		return
	}
	response.JSON(w, r, http.StatusOK, nonNil(products))
}

func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		response.Error(w, r, http.StatusUnprocessableEntity, codeValidation, "q is required", nil)
		return
	}
	pageReq, err := parseSearchPage(r)
	if err != nil {
		response.Error(w, r, http.StatusUnprocessableEntity, codeValidation, err.Error(), nil)
		return
	}
	page, err := h.svc.Search(r.Context(), query, pageReq)
	if err != nil {
		writeServiceError(w, r, err, "search products")
		return
	}
	response.JSON(w, r, http.StatusOK, productSearchResponse{
		Products:   nonNil(page.Items),
		Total:      page.Total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
	})
}

func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		response.Error(w, r, http.StatusUnprocessableEntity, codeValidation, err.Error(), nil)
		return
	}
	products, err := h.svc.ListByCategory(r.Context(), pathParam(r, "category"), window)
	if err != nil {
		writeServiceError(w, r, err, "list products by category")
		return
	}
	response.JSON(w, r, http.StatusOK, nonNil(products))
}

func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	productID, err := parsePathID(pathParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusUnprocessableEntity, codeValidation, "invalid product id", nil)
		return
	}
	product, err := h.svc.GetByID(r.Context(), productID)
	if err != nil {
		writeServiceError(w, r, err, "load product")
		return
	}
	response.JSON(w, r, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createProductRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if missing := body.missingFields(); len(missing) > 0 {
		response.Error(w, r, http.StatusUnprocessableEntity, codeValidation, "missing required fields", map[string]any{"fields": missing})
		return
	}

	created, err := h.svc.Create(r.Context(), body.toInput())
	if err != nil {
		writeServiceError(w, r, err, "create product")
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "catalog.product.create",
		TargetType: "product",
		TargetID:   formatID(created.ID),
		Action:     "create",
		Outcome:    "success",
		Reason:     "product_created",
	}, "category", created.Category)
	response.JSON(w, r, http.StatusOK, created)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	productID, err := parsePathID(pathParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusUnprocessableEntity, codeValidation, "invalid product id", nil)
		return
	}
	var patch domain.ProductPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	updated, err := h.svc.Update(r.Context(), productID, patch)
	if err != nil {
		writeServiceError(w, r, err, "update product")
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "catalog.product.update",
		TargetType: "product",
		TargetID:   formatID(productID),
		Action:     "update",
		Outcome:    "success",
		Reason:     "product_updated",
	})
	response.JSON(w, r, http.StatusOK, updated)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID, err := parsePathID(pathParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusUnprocessableEntity, codeValidation, "invalid product id", nil)
		return
	}

	deleted, err := h.svc.Delete(r.Context(), productID)
	if err != nil {
		writeServiceError(w, r, err, "delete product")
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "catalog.product.delete",
		TargetType: "product",
		TargetID:   formatID(productID),
		Action:     "delete",
		Outcome:    "success",
		Reason:     "product_deleted",
	})
	response.JSON(w, r, http.StatusOK, deleted)
}
