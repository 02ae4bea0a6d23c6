// handlers_report.go - Read-only views of a finished analysis
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/netstats-history/netdelta/internal/models"
	"github.com/netstats-history/netdelta/internal/report"
	"github.com/netstats-history/netdelta/internal/session"
)

const (
	defaultPageSize = 500
	maxPageSize     = 10000
)

// ReportHandler serves one frozen session.Result. Nothing here mutates it.
type ReportHandler struct {
	result *session.Result
}

// NewReportHandler creates a handler over result.
func NewReportHandler(result *session.Result) *ReportHandler {
	return &ReportHandler{result: result}
}

type reportEnvelope struct {
	ID          string         `json:"id"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Report      *models.Report `json:"report"`
}

type interfaceSummary struct {
	Name         string `json:"name"`
	Observations int    `json:"observations"`
	Deltas       int    `json:"deltas"`
	Resets       int    `json:"resets"`
	TotalRX      uint64 `json:"totalRx"`
	TotalTX      uint64 `json:"totalTx"`
}

type deltaPage struct {
	Interface string              `json:"interface"`
	Page      int                 `json:"page"`
	PageSize  int                 `json:"pageSize"`
	Total     int                 `json:"total"`
	Entries   []models.DeltaEntry `json:"entries"`
}

func (h *ReportHandler) envelope() reportEnvelope {
	return reportEnvelope{
		ID:          h.result.ID,
		GeneratedAt: h.result.GeneratedAt,
		Report:      h.result.Report,
	}
}

// HandleGetReport returns the whole report as JSON.
func (h *ReportHandler) HandleGetReport(c echo.Context) error {
	return c.JSON(http.StatusOK, h.envelope())
}

// HandleGetReportMsgpack returns the whole report msgpack-encoded.
func (h *ReportHandler) HandleGetReportMsgpack(c echo.Context) error {
	data, err := report.MarshalMsgpack(h.envelope())
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleListInterfaces returns per-interface totals in report order.
func (h *ReportHandler) HandleListInterfaces(c echo.Context) error {
	return c.JSON(http.StatusOK, summarize(h.result.Report))
}

func summarize(r *models.Report) []interfaceSummary {
	out := make([]interfaceSummary, 0, len(r.Interfaces))
	for _, s := range r.Interfaces {
		out = append(out, interfaceSummary{
			Name:         s.Interface,
			Observations: s.Observations,
			Deltas:       len(s.Deltas),
			Resets:       s.Resets,
			TotalRX:      s.TotalRX,
			TotalTX:      s.TotalTX,
		})
	}
	return out
}

// HandleGetInterfaceDeltas returns one page of an interface's delta table.
// Query: page (1-based), pageSize, resets=only.
func (h *ReportHandler) HandleGetInterfaceDeltas(c echo.Context) error {
	name := c.Param("name")
	if name == "" {
		return NewValidationError("name")
	}
	series, ok := h.result.Report.Series(name)
	if !ok {
		return NewNotFoundError("interface", name)
	}

	page, err := queryInt(c, "page", 1)
	if err != nil {
		return NewBadRequestError("invalid query parameter: page", err)
	}
	if page < 1 {
		return NewValidationError("page")
	}
	pageSize, err := queryInt(c, "pageSize", defaultPageSize)
	if err != nil {
		return NewBadRequestError("invalid query parameter: pageSize", err)
	}
	if pageSize < 1 || pageSize > maxPageSize {
		return NewValidationError("pageSize")
	}

	var resetsOnly bool
	switch c.QueryParam("resets") {
	case "":
	case "only":
		resetsOnly = true
	default:
		return NewValidationError("resets")
	}

	return c.JSON(http.StatusOK, pageDeltas(series, page, pageSize, resetsOnly))
}

// pageDeltas slices one page out of an interface's delta table. A page past
// the end is empty, not an error.
func pageDeltas(series *models.InterfaceSeries, page, pageSize int, resetsOnly bool) deltaPage {
	entries := series.Deltas
	if resetsOnly {
		entries = make([]models.DeltaEntry, 0)
		for _, d := range series.Deltas {
			if d.Reset {
				entries = append(entries, d)
			}
		}
	}

	// Compare before multiplying so a huge page cannot overflow the offset.
	start := len(entries)
	if page-1 <= len(entries)/pageSize {
		start = min((page-1)*pageSize, len(entries))
	}
	end := start + min(pageSize, len(entries)-start)

	return deltaPage{
		Interface: series.Interface,
		Page:      page,
		PageSize:  pageSize,
		Total:     len(entries),
		Entries:   entries[start:end],
	}
}

func queryInt(c echo.Context, key string, def int) (int, error) {
	raw := c.QueryParam(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
