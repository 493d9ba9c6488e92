package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"billing-reports/internal/audit"
	"billing-reports/internal/auth"
	"billing-reports/internal/observability/metrics"
	"billing-reports/internal/reports/application"
	reports "billing-reports/internal/reports/domain"
)

// Exporter runs report exports.
type Exporter interface {
	Export(ctx context.Context, req application.ExportRequest) (*application.ExportResult, error)
	Kinds() []string
	DefaultPeriod() reports.PeriodKey
}

// Handler serves report listing and export endpoints.
type Handler struct {
	exporter    Exporter
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(exporter Exporter, auditLogger audit.Logger) (*Handler, error) {
	if exporter == nil {
		return nil, errors.New("report handler: nil exporter")
	}
	return &Handler{exporter: exporter, auditLogger: auditLogger}, nil
}

// ServeHTTP handles report routes under /api/v1/reports.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/api/v1/reports" && r.Method == http.MethodGet {
		h.handleList(w, r)
		return
	}
	if strings.HasPrefix(path, "/api/v1/reports/") {
		rest := strings.TrimPrefix(path, "/api/v1/reports/")
		parts := strings.Split(rest, "/")
		if len(parts) == 2 && r.Method == http.MethodGet {
			if format, ok := strings.CutPrefix(parts[1], "export."); ok {
				h.handleExport(w, r, parts[0], format)
				return
			}
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"reports":        h.exporter.Kinds(),
		"default_period": h.exporter.DefaultPeriod().Full(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, kind, format string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport(kind, format, result, time.Since(start))
	}()

	req := application.ExportRequest{Kind: kind, Format: format}
	var ok bool
	if from := r.URL.Query().Get("from"); from != "" {
		if req.From, ok = reports.ParsePeriod(from); !ok {
			result = metrics.ResultError
			http.Error(w, "invalid from period", http.StatusBadRequest)
			return
		}
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if req.To, ok = reports.ParsePeriod(to); !ok {
			result = metrics.ResultError
			http.Error(w, "invalid to period", http.StatusBadRequest)
			return
		}
	}

	res, err := h.exporter.Export(r.Context(), req)
	if err != nil {
		result = metrics.ResultError
		if errors.Is(err, reports.ErrFetchFailed) {
			metrics.IncFetchError("upstream")
		}
		respondExportError(w, err)
		return
	}
	metrics.AddDroppedRecords(kind, res.Dropped)
	metrics.ObserveRenderSize(format, len(res.Data))

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
	h.logAudit(r, kind, format, res.Filename, map[string]any{
		"from":    r.URL.Query().Get("from"),
		"to":      r.URL.Query().Get("to"),
		"dropped": res.Dropped,
		"records": res.Summary.Records,
	})
}

func respondExportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reports.ErrUnknownKind):
		http.Error(w, "unknown report kind", http.StatusNotFound)
	case errors.Is(err, reports.ErrNoRecords):
		http.Error(w, "no data for period", http.StatusNotFound)
	case errors.Is(err, reports.ErrFetchFailed):
		http.Error(w, "upstream fetch failed", http.StatusBadGateway)
	case errors.Is(err, reports.ErrRenderFailed):
		http.Error(w, "export render error", http.StatusInternalServerError)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func (h *Handler) logAudit(r *http.Request, kind, format, filename string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	orgID := auth.OrgIDFromContext(r.Context())
	if orgID == "" {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		OrgID:        orgID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       "report.export",
		ResourceType: "report",
		ResourceID:   kind,
		ReportKind:   kind,
		Format:       format,
		Filename:     filename,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}
