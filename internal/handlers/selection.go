package handlers

import (
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/Jonikpatel/realtime-dashboard/internal/errors"
	"github.com/Jonikpatel/realtime-dashboard/internal/models"
)

const dateLayout = "2006-01-02"

// parseSelection builds the filter selection from query parameters.
// Every aggregation endpoint accepts the same four: start, end (YYYY-MM-DD),
// region, category. The engine receives the selection explicitly; no filter
// state lives anywhere else.
func parseSelection(r *http.Request) (models.FilterSelection, error) {
	q := r.URL.Query()

	var sel models.FilterSelection
	if v := q.Get("start"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return sel, apperrors.BadRequestWrap(err, "malformed start date, want YYYY-MM-DD")
		}
		sel.Range.Start = t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return sel, apperrors.BadRequestWrap(err, "malformed end date, want YYYY-MM-DD")
		}
		sel.Range.End = t
	}
	sel.Region = q.Get("region")
	sel.Category = q.Get("category")
	return sel, nil
}

func parseFloatParam(r *http.Request, name string, defaultValue float64) (float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, apperrors.BadRequestWrap(err, "malformed "+name+" parameter")
	}
	return f, nil
}
