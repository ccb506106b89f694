package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/user/backlink-reclaim/internal/delivery/http/request"
	"github.com/user/backlink-reclaim/internal/delivery/http/response"
	"github.com/user/backlink-reclaim/internal/entity"
	"github.com/user/backlink-reclaim/internal/repository"
	"github.com/user/backlink-reclaim/internal/usecase"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	scanner        usecase.Scanner
	history        usecase.History
	scanDeadline   time.Duration
	debugResponses bool
	now            func() time.Time
}

// NewHandler creates the HTTP handler. scanDeadline bounds a whole scan; zero means no bound.
// debugResponses adds debug counters to every scan response.
func NewHandler(scanner usecase.Scanner, history usecase.History, scanDeadline time.Duration, debugResponses bool) *Handler {
	return &Handler{
		scanner:        scanner,
		history:        history,
		scanDeadline:   scanDeadline,
		debugResponses: debugResponses,
		now:            time.Now,
	}
}

func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	var req request.ScanRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Domain) == "" {
		h.writeJSONError(w, "Domain is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if h.scanDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.scanDeadline)
		defer cancel()
	}

	result, err := h.scanner.Scan(ctx, entity.ScanRequest{Domain: req.Domain, Debug: req.Debug})
	if err != nil {
		h.writeScanError(w, req.Domain, err)
		return
	}

	h.writeJSON(w, http.StatusOK, response.NewScanResponse(result, req.Debug || h.debugResponses))
}

func (h *Handler) writeScanError(w http.ResponseWriter, domain string, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidDomain):
		h.writeJSONError(w, "A valid domain is required", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrRateLimited):
		resetsAt := repository.NextReset(h.now())
		h.writeJSON(w, http.StatusTooManyRequests, response.ErrorResponse{
			Error:    "This domain has already been scanned today. Please try again tomorrow.",
			ResetsAt: &resetsAt,
		})
	case errors.Is(err, usecase.ErrProviderNotConfigured):
		slog.Error("Scan requested without provider credentials", "domain", domain)
		h.writeJSONError(w, "Backlink provider is not configured", http.StatusInternalServerError)
	case errors.Is(err, repository.ErrUpstreamRejected),
		errors.Is(err, repository.ErrUpstreamUnreachable),
		errors.Is(err, repository.ErrBadResponse):
		h.writeJSONError(w, err.Error(), http.StatusInternalServerError)
	default:
		slog.Error("Scan failed", "domain", domain, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) HandleListScans(w http.ResponseWriter, r *http.Request) {
	domain := r.URL.Query().Get("domain")
	if domain == "" {
		h.writeJSONError(w, "domain query parameter is required", http.StatusBadRequest)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeJSONError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	scans, err := h.history.List(r.Context(), domain, limit)
	if err != nil {
		h.writeHistoryError(w, err)
		return
	}

	resp := response.ScanListResponse{Scans: make([]response.ScanSummary, 0, len(scans))}
	for _, s := range scans {
		resp.Scans = append(resp.Scans, response.NewScanSummary(s))
	}
	if len(scans) > 0 {
		resp.Domain = scans[0].Domain
	} else {
		resp.Domain = domain
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleGetScan(w http.ResponseWriter, r *http.Request) {
	scan, err := h.history.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeHistoryError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.NewScanResponse(scan, true))
}

func (h *Handler) HandleExportScan(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = usecase.ExportCSV
	}
	if format != usecase.ExportCSV && format != usecase.ExportXLSX {
		h.writeJSONError(w, "format must be csv or xlsx", http.StatusBadRequest)
		return
	}

	scan, err := h.history.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeHistoryError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := usecase.Export(&buf, scan, format); err != nil {
		slog.Error("Failed to export scan", "scan_id", scan.ID, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("dead-pages-%s-%s.%s", scan.Domain, scan.ScannedAt.Format("2006-01-02"), format)
	w.Header().Set("Content-Type", usecase.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write export", "scan_id", scan.ID, "error", err)
	}
}

func (h *Handler) writeHistoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrHistoryUnavailable):
		h.writeJSONError(w, "Scan history is not available", http.StatusServiceUnavailable)
	case errors.Is(err, repository.ErrScanNotFound):
		h.writeJSONError(w, "Scan not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrInvalidDomain):
		h.writeJSONError(w, "A valid domain is required", http.StatusBadRequest)
	default:
		slog.Error("Failed to read scan history", "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
}

func (h *Handler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.writeJSONError(w, "Not found", http.StatusNotFound)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	response.JSON(w, status, data)
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	response.Error(w, message, status)
}
