package handler

import (
	"net/http"

	"shopbooking/internal/catalog/service"
	httputil "shopbooking/pkg/http"
	"shopbooking/pkg/logger"
	"shopbooking/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PricingHandler struct {
	service service.PricingCatalog
	log     *logger.Logger
}

func NewPricingHandler(service service.PricingCatalog, log *logger.Logger) *PricingHandler {
	return &PricingHandler{
		service: service,
		log:     log,
	}
}

func (h *PricingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	active, err := activeOnly(r)
	if err != nil {
		writeError(h.log, w, "ListPricing", err)
		return
	}

	items, err := h.service.List(r.Context(), active)
	if err != nil {
		writeError(h.log, w, "ListPricing", err)
		return
	}

	if err := httputil.WriteSuccess(w, items); err != nil {
		h.log.Error("failed to write success response", "handler", "ListPricing", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PricingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var item model.PriceItem
	if err := httputil.DecodeJSON(r, &item); err != nil {
		writeError(h.log, w, "CreatePrice", err)
		return
	}

	created, err := h.service.Create(r.Context(), &item)
	if err != nil {
		writeError(h.log, w, "CreatePrice", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "CreatePrice", "operation", "WriteCreated", "error", err)
	}
}

func (h *PricingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.PriceItemUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		writeError(h.log, w, "UpdatePrice", err)
		return
	}

	updated, err := h.service.Update(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		writeError(h.log, w, "UpdatePrice", err)
		return
	}

	if err := httputil.WriteSuccess(w, updated); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdatePrice", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PricingHandler) SetActive(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	active, err := decodeActive(r)
	if err != nil {
		writeError(h.log, w, "SetPriceActive", err)
		return
	}

	updated, err := h.service.SetActive(r.Context(), ps.ByName("id"), active)
	if err != nil {
		writeError(h.log, w, "SetPriceActive", err)
		return
	}

	if err := httputil.WriteSuccess(w, updated); err != nil {
		h.log.Error("failed to write success response", "handler", "SetPriceActive", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PricingHandler) Move(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req moveRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		writeError(h.log, w, "MovePrice", err)
		return
	}

	if err := h.service.Move(r.Context(), ps.ByName("id"), req.Direction); err != nil {
		writeError(h.log, w, "MovePrice", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *PricingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		writeError(h.log, w, "DeletePrice", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *PricingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/pricing", h.List)
	router.POST("/api/v1/pricing", h.Create)
	router.PUT("/api/v1/pricing/:id", h.Update)
	router.DELETE("/api/v1/pricing/:id", h.Delete)
	router.POST("/api/v1/pricing/:id/active", h.SetActive)
	router.POST("/api/v1/pricing/:id/move", h.Move)
}
