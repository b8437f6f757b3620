package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"cares/internal/catalog"
	"cares/internal/pdf"
	"cares/internal/service"
)

// ReportHandler handles report endpoints
type ReportHandler struct {
	reportSvc *service.ReportService
	catalog   *catalog.Catalog
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportSvc *service.ReportService, cat *catalog.Catalog) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc, catalog: cat}
}

// List handles GET /reports
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.reportSvc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /reports/{id}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := reportID(w, r)
	if !ok {
		return
	}

	rec, err := h.reportSvc.Get(r.Context(), id)
	if errors.Is(err, service.ErrReportNotFound) {
		writeError(w, http.StatusNotFound, "Report not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// PDF handles GET /reports/{id}/pdf
func (h *ReportHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := reportID(w, r)
	if !ok {
		return
	}

	rec, err := h.reportSvc.Get(r.Context(), id)
	if errors.Is(err, service.ErrReportNotFound) {
		writeError(w, http.StatusNotFound, "Report not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	data, err := pdf.Render(h.catalog, rec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="cares-report-%d.pdf"`, id))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func reportID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid report id")
		return 0, false
	}
	return id, true
}
