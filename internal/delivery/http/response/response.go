package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/user/backlink-reclaim/internal/entity"
)

// ScanResponse is the body of a successful scan and of a stored scan lookup.
type ScanResponse struct {
	Success        bool              `json:"success"`
	ID             string            `json:"id"`
	Domain         string            `json:"domain"`
	ScannedAt      time.Time         `json:"scanned_at"`
	TotalBacklinks int               `json:"total_backlinks"`
	Results        []entity.DeadPage `json:"results"`
	Inconclusive   []entity.DeadPage `json:"inconclusive,omitempty"`
	Debug          *entity.ScanDebug `json:"debug,omitempty"`
}

// ScanSummary is one row of the scan history listing.
type ScanSummary struct {
	ID             string    `json:"id"`
	Domain         string    `json:"domain"`
	ScannedAt      time.Time `json:"scanned_at"`
	DeadPages      int       `json:"dead_pages"`
	TotalBacklinks int       `json:"total_backlinks"`
}

// ScanListResponse is the body of GET /scans.
type ScanListResponse struct {
	Domain string        `json:"domain"`
	Scans  []ScanSummary `json:"scans"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error    string     `json:"error"`
	ResetsAt *time.Time `json:"resets_at,omitempty"`
}

// NewScanResponse maps a scan result; debug counters are only included when asked for.
func NewScanResponse(scan *entity.ScanResult, withDebug bool) ScanResponse {
	resp := ScanResponse{
		Success:        true,
		ID:             scan.ID,
		Domain:         scan.Domain,
		ScannedAt:      scan.ScannedAt,
		TotalBacklinks: scan.TotalBacklinks,
		Results:        scan.Results,
		Inconclusive:   scan.Inconclusive,
	}
	if resp.Results == nil {
		resp.Results = []entity.DeadPage{}
	}
	if withDebug {
		debug := scan.Debug
		resp.Debug = &debug
	}
	return resp
}

// NewScanSummary maps a stored scan to its history row.
func NewScanSummary(scan *entity.ScanResult) ScanSummary {
	return ScanSummary{
		ID:             scan.ID,
		Domain:         scan.Domain,
		ScannedAt:      scan.ScannedAt,
		DeadPages:      len(scan.Results),
		TotalBacklinks: scan.TotalBacklinks,
	}
}

// JSON writes data with the given status.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

// Error writes the {"error": message} envelope.
func Error(w http.ResponseWriter, message string, status int) {
	JSON(w, status, ErrorResponse{Error: message})
}
