package handler

import (
	"net/http"

	"shopbooking/internal/catalog/service"
	httputil "shopbooking/pkg/http"
	"shopbooking/pkg/logger"
	"shopbooking/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ServicesHandler struct {
	service service.ServiceCatalog
	log     *logger.Logger
}

func NewServicesHandler(service service.ServiceCatalog, log *logger.Logger) *ServicesHandler {
	return &ServicesHandler{
		service: service,
		log:     log,
	}
}

func (h *ServicesHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	active, err := activeOnly(r)
	if err != nil {
		writeError(h.log, w, "ListServices", err)
		return
	}

	items, err := h.service.List(r.Context(), active)
	if err != nil {
		writeError(h.log, w, "ListServices", err)
		return
	}

	if err := httputil.WriteSuccess(w, items); err != nil {
		h.log.Error("failed to write success response", "handler", "ListServices", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ServicesHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var item model.ServiceItem
	if err := httputil.DecodeJSON(r, &item); err != nil {
		writeError(h.log, w, "CreateService", err)
		return
	}

	created, err := h.service.Create(r.Context(), &item)
	if err != nil {
		writeError(h.log, w, "CreateService", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateService", "operation", "WriteCreated", "error", err)
	}
}

func (h *ServicesHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.ServiceItemUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		writeError(h.log, w, "UpdateService", err)
		return
	}

	updated, err := h.service.Update(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		writeError(h.log, w, "UpdateService", err)
		return
	}

	if err := httputil.WriteSuccess(w, updated); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateService", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ServicesHandler) SetActive(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	active, err := decodeActive(r)
	if err != nil {
		writeError(h.log, w, "SetServiceActive", err)
		return
	}

	updated, err := h.service.SetActive(r.Context(), ps.ByName("id"), active)
	if err != nil {
		writeError(h.log, w, "SetServiceActive", err)
		return
	}

	if err := httputil.WriteSuccess(w, updated); err != nil {
		h.log.Error("failed to write success response", "handler", "SetServiceActive", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ServicesHandler) Move(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req moveRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		writeError(h.log, w, "MoveService", err)
		return
	}

	if err := h.service.Move(r.Context(), ps.ByName("id"), req.Direction); err != nil {
		writeError(h.log, w, "MoveService", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *ServicesHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		writeError(h.log, w, "DeleteService", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *ServicesHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/services", h.List)
	router.POST("/api/v1/services", h.Create)
	router.PUT("/api/v1/services/:id", h.Update)
	router.DELETE("/api/v1/services/:id", h.Delete)
	router.POST("/api/v1/services/:id/active", h.SetActive)
	router.POST("/api/v1/services/:id/move", h.Move)
}
