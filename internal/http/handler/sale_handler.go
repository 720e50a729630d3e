package handler

import (
	"net/http"

	"github.com/sandeepkv93/bazar-universal-api/internal/http/response"
	"github.com/sandeepkv93/bazar-universal-api/internal/observability"
	"github.com/sandeepkv93/bazar-universal-api/internal/service"
)

type SaleHandler struct {
	svc service.SaleService
}

func NewSaleHandler(svc service.SaleService) *SaleHandler {
	return &SaleHandler{svc: svc}
}

type createSaleRequest struct {
	ProductID *uint `json:"product_id"`
	Quantity  *int  `json:"quantity"`
}

// List returns a window of sales plus the statistics over all sales.
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		response.Error(w, r, http.StatusUnprocessableEntity, codeValidation, err.Error(), nil)
		return
	}
	summary, err := h.svc.Summary(r.Context(), window)
	if err != nil {
		writeServiceError(w, r, err, "list sales")
		return
	}
	summary.Sales = nonNil(summary.Sales)
	response.JSON(w, r, http.StatusOK, summary)
}

func (h *SaleHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "load sale statistics")
		return
	}
	response.JSON(w, r, http.StatusOK, stats)
}

func (h *SaleHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := parsePathID(pathParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusUnprocessableEntity, codeValidation, "invalid product id", nil)
		return
	}
	window, err := parseWindow(r)
	if err != nil {
		response.Error(w, r, http.StatusUnprocessableEntity, codeValidation, err.Error(), nil)
		return
	}
	sales, err := h.svc.ListByProduct(r.Context(), productID, window)
	if err != nil {
		writeServiceError(w, r, err, "list product sales")
		return
	}
	response.JSON(w, r, http.StatusOK, nonNil(sales))
}

func (h *SaleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	saleID, err := parsePathID(pathParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusUnprocessableEntity, codeValidation, "invalid sale id", nil)
		return
	}
	sale, err := h.svc.GetByID(r.Context(), saleID)
	if err != nil {
		writeServiceError(w, r, err, "load sale")
		return
	}
	response.JSON(w, r, http.StatusOK, sale)
}

func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createSaleRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.ProductID == nil {
		response.Error(w, r, http.StatusUnprocessableEntity, codeValidation, "missing required fields", map[string]any{"fields": []string{"product_id"}})
		return
	}
	input := service.CreateSaleInput{ProductID: *body.ProductID, Quantity: 1}
	if body.Quantity != nil {
		if *body.Quantity < 1 {
			writeServiceError(w, r, service.ErrSaleInvalidQuantity, "create sale")
			return
		}
		input.Quantity = *body.Quantity
	}

	sale, err := h.svc.Create(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err, "create sale")
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "catalog.sale.create",
		TargetType: "sale",
		TargetID:   formatID(sale.ID),
		Action:     "create",
		Outcome:    "success",
		Reason:     "sale_recorded",
	}, "product_id", sale.ProductID, "quantity", sale.Quantity)
	response.JSON(w, r, http.StatusOK, sale)
}

func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	saleID, err := parsePathID(pathParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusUnprocessableEntity, codeValidation, "invalid sale id", nil)
		return
	}
	deleted, err := h.svc.Delete(r.Context(), saleID)
	if err != nil {
		writeServiceError(w, r, err, "delete sale")
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "catalog.sale.delete",
		TargetType: "sale",
		TargetID:   formatID(saleID),
		Action:     "delete",
		Outcome:    "success",
		Reason:     "sale_deleted",
	})
	response.JSON(w, r, http.StatusOK, deleted)
}
