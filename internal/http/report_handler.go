package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/polybooks/polybooks/internal/apperr"
	"github.com/polybooks/polybooks/internal/service"
)

type reportHandler struct {
	reportSvc service.ReportService
	res       *responder
}

func newReportHandler(reportSvc service.ReportService, res *responder) *reportHandler {
	return &reportHandler{reportSvc: reportSvc, res: res}
}

func (h *reportHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportSvc.InventoryReport(r.Context())
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusOK, report)
}

func (h *reportHandler) Sales(w http.ResponseWriter, r *http.Request) {
	start, err := queryTime(r, "start_date")
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	end, err := queryTime(r, "end_date")
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	report, err := h.reportSvc.SalesReport(r.Context(), start, end)
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusOK, report)
}

// queryTime parses an optional RFC 3339 date or timestamp query parameter.
func queryTime(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperr.ValidationErr.WrapParent(fmt.Errorf("parse %s: %w", name, err))
	}

	return t, nil
}
