package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Jonikpatel/realtime-dashboard/internal/models"
	"github.com/Jonikpatel/realtime-dashboard/internal/services"
	"github.com/starfederation/datastar-go/datastar"
)

const defaultMaxTableRows = 50

var kpiRowTemplate = template.Must(template.New("kpiRow").Parse(`
<div id="kpi-row" class="kpi-row">
<div class="kpi-card"><span class="kpi-label">Total Sales</span><strong>${{printf "%.2f" .TotalSales}}</strong></div>
<div class="kpi-card"><span class="kpi-label">Avg Order Value</span><strong>${{printf "%.2f" .AverageOrderValue}}</strong></div>
<div class="kpi-card"><span class="kpi-label">Orders</span><strong>{{.OrderCount}}</strong></div>
</div>`))

var breakdownTableTemplate = template.Must(template.New("breakdownTable").Parse(`
<div id="breakdown-content">
<table class="modern-table">
<thead><tr><th>{{.Dimension}}</th><th>Total Sales</th></tr></thead>
<tbody>
{{range $i, $item := .Data}}{{if lt $i $.MaxRows}}<tr>
<td>{{.Key}}</td>
<td><strong>${{printf "%.2f" .TotalSales}}</strong></td>
</tr>{{end}}{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	store   *services.Store
	logger  *slog.Logger
	maxRows int
}

func NewSSEHandlers(store *services.Store, logger *slog.Logger, maxRows int) *SSEHandlers {
	if maxRows < 1 {
		maxRows = defaultMaxTableRows
	}
	return &SSEHandlers{
		store:   store,
		logger:  logger,
		maxRows: maxRows,
	}
}

type breakdownTemplateData struct {
	Dimension string
	Data      []models.GroupTotal
	MaxRows   int
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (h *SSEHandlers) renderKPIRow(metrics models.SummaryMetrics) (string, error) {
	var buf strings.Builder
	err := kpiRowTemplate.Execute(&buf, metrics)
	return buf.String(), err
}

func (h *SSEHandlers) renderBreakdownTable(dim services.Dimension, data []models.GroupTotal) (string, error) {
	var buf strings.Builder

	// Limit data slice to avoid rendering unnecessary rows
	if len(data) > h.maxRows {
		data = data[:h.maxRows]
	}

	tmplData := breakdownTemplateData{
		Dimension: titleCase(string(dim)),
		Data:      data,
		MaxRows:   h.maxRows,
	}
	err := breakdownTableTemplate.Execute(&buf, tmplData)
	return buf.String(), err
}

// subsetOrFail resolves the request's selection against the snapshot. A bad
// selection is surfaced to the page through the filter-error element, not as
// an HTTP error, so the dashboard stays interactive.
func (h *SSEHandlers) subsetOrFail(sse *datastar.ServerSentEventGenerator, r *http.Request) ([]models.Order, bool) {
	sel, err := parseSelection(r)
	if err == nil {
		var subset []models.Order
		subset, err = services.Filter(h.store.Orders(), sel)
		if err == nil {
			sse.PatchElements(`<div id="filter-error" class="filter-error"></div>`)
			return subset, true
		}
	}

	h.logger.Warn("rejected filter selection", "error", err)
	sse.PatchElements(`<div id="filter-error" class="filter-error">` + template.HTMLEscapeString(err.Error()) + `</div>`)
	return nil, false
}

func (h *SSEHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	subset, ok := h.subsetOrFail(sse, r)
	if !ok {
		return
	}

	html, err := h.renderKPIRow(services.Summarize(subset))
	if err != nil {
		h.logger.Error("render kpi row", "error", err)
		return
	}

	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleBreakdown(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	dim, err := services.ParseDimension(r.URL.Query().Get("dimension"))
	if err != nil {
		dim = services.DimensionRegion
	}

	subset, ok := h.subsetOrFail(sse, r)
	if !ok {
		return
	}

	data := services.Breakdown(subset, dim)

	html, err := h.renderBreakdownTable(dim, data)
	if err != nil {
		h.logger.Error("render breakdown table", "error", err)
		return
	}
	sse.PatchElements(html)

	jsonData, err := json.Marshal(map[string]any{
		"breakdownData": data,
	})
	if err != nil {
		h.logger.Error("marshal breakdown data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	subset, ok := h.subsetOrFail(sse, r)
	if !ok {
		return
	}

	// KPI row
	html, err := h.renderKPIRow(services.Summarize(subset))
	if err != nil {
		h.logger.Error("render kpi row", "error", err)
		return
	}
	sse.PatchElements(html)

	// Region breakdown table
	regionData := services.Breakdown(subset, services.DimensionRegion)
	html, err = h.renderBreakdownTable(services.DimensionRegion, regionData)
	if err != nil {
		h.logger.Error("render breakdown table", "error", err)
		return
	}
	sse.PatchElements(html)

	// Chart signals in one call
	allSignals, err := json.Marshal(map[string]any{
		"breakdownData": regionData,
		"categoryData":  services.Breakdown(subset, services.DimensionCategory),
		"monthlyData":   services.MonthlyTrend(subset),
	})
	if err != nil {
		h.logger.Error("marshal all signals data", "error", err)
		return
	}
	sse.PatchSignals(allSignals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
