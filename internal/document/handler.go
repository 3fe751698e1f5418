package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"docuvault/internal/document/model"
	"docuvault/internal/document/service"
	"docuvault/pkg/apperr"
	"docuvault/pkg/logger"
)

type DocumentHandler struct {
	Service *service.DocumentService
}

func NewDocumentHandler(service *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{Service: service}
}

// Health reports liveness of the service and its backend. Returns 503
// while the database is unreachable so load balancers can drain.
func (h *DocumentHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := model.HealthResponse{
		Status:    "healthy",
		Database:  "connected",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK
	if err := h.Service.Health(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Database = "disconnected"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (h *DocumentHandler) ExportAll(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Service.ExportAll(r.Context())
	if err != nil {
		logger.Sugar.Errorf("Export failed: %v", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *DocumentHandler) Import(w http.ResponseWriter, r *http.Request) {
	var snap model.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "invalid snapshot body"})
		return
	}

	imported, err := h.Service.Import(r.Context(), &snap)
	if err != nil {
		logger.Sugar.Errorf("Import failed after %d documents: %v", imported, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ImportResponse{Success: true, Imported: imported})
}

func (h *DocumentHandler) ReadStore(w http.ResponseWriter, r *http.Request) {
	store := r.PathValue("store")

	docs, err := h.Service.ReadStore(r.Context(), store)
	if err != nil {
		logger.Sugar.Errorf("Error reading store %s: %v", store, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	store := r.PathValue("store")

	var content json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&content); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.Service.Upsert(r.Context(), store, content); err != nil {
		logger.Sugar.Errorf("Error upserting into store %s: %v", store, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.SuccessResponse{Success: true})
}

// Delete is idempotent: removing an id that does not exist still responds
// success, never 404.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	store := r.PathValue("store")
	id := r.PathValue("id")

	if err := h.Service.Delete(r.Context(), store, id); err != nil {
		logger.Sugar.Errorf("Error deleting %s from store %s: %v", id, store, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.SuccessResponse{Success: true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto status codes. Storage detail
// never reaches the caller; it is already logged server-side.
func writeError(w http.ResponseWriter, err error) {
	var vErr *apperr.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: vErr.Reason})
		return
	}
	var eErr *apperr.ExportError
	if errors.As(err, &eErr) {
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "export failed", Reason: eErr.Hint})
		return
	}
	writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "database error"})
}
