package services

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/Jonikpatel/realtime-dashboard/internal/models"
)

// Dimension names a categorical column orders can be grouped by.
type Dimension string

const (
	DimensionRegion   Dimension = "region"
	DimensionCategory Dimension = "category"
)

func ParseDimension(s string) (Dimension, error) {
	switch Dimension(strings.ToLower(s)) {
	case DimensionRegion:
		return DimensionRegion, nil
	case DimensionCategory:
		return DimensionCategory, nil
	}
	return "", fmt.Errorf("unknown dimension %q", s)
}

// InvalidFilterError reports a date range whose start falls after its end.
// It is surfaced to the UI layer as a validation failure, never as a fatal
// process error.
type InvalidFilterError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid date range: start %s is after end %s",
		e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"))
}

// Simulator input bounds, matching the dashboard slider ranges.
const (
	MinPriceDelta = -0.20
	MaxPriceDelta = 0.20
	MinElasticity = 0.5
	MaxElasticity = 2.0
)

// Filter returns the orders satisfying every criterion of the selection.
// Region and category values with no match in the data yield an empty
// subset, not an error.
func Filter(orders []models.Order, sel models.FilterSelection) ([]models.Order, error) {
	if !sel.Range.Start.IsZero() && !sel.Range.End.IsZero() && sel.Range.Start.After(sel.Range.End) {
		return nil, &InvalidFilterError{Start: sel.Range.Start, End: sel.Range.End}
	}

	subset := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if matches(o, sel) {
			subset = append(subset, o)
		}
	}
	return subset, nil
}

func matches(o models.Order, sel models.FilterSelection) bool {
	if !sel.Range.Start.IsZero() && o.Date.Before(sel.Range.Start) {
		return false
	}
	if !sel.Range.End.IsZero() && o.Date.After(sel.Range.End) {
		return false
	}
	if sel.Region != "" && o.Region != sel.Region {
		return false
	}
	if sel.Category != "" && o.Category != sel.Category {
		return false
	}
	return true
}

// Summarize computes the KPI row for a subset. An empty subset yields
// all-zero metrics.
func Summarize(subset []models.Order) models.SummaryMetrics {
	var m models.SummaryMetrics
	for _, o := range subset {
		m.TotalSales += o.Amount
	}
	m.OrderCount = len(subset)
	if m.OrderCount > 0 {
		m.AverageOrderValue = m.TotalSales / float64(m.OrderCount)
	}
	return m
}

// Breakdown groups the subset by the given dimension and sums amounts per
// group. Results are ordered descending by total, ties broken by ascending
// lexical order of the group key.
func Breakdown(subset []models.Order, dim Dimension) []models.GroupTotal {
	totals := make(map[string]float64)
	for _, o := range subset {
		totals[groupKey(o, dim)] += o.Amount
	}

	result := make([]models.GroupTotal, 0, len(totals))
	for key, sum := range totals {
		result = append(result, models.GroupTotal{Key: key, TotalSales: sum})
	}
	slices.SortFunc(result, func(a, b models.GroupTotal) int {
		if a.TotalSales > b.TotalSales {
			return -1
		}
		if a.TotalSales < b.TotalSales {
			return 1
		}
		return strings.Compare(a.Key, b.Key)
	})
	return result
}

func groupKey(o models.Order, dim Dimension) string {
	if dim == DimensionCategory {
		return o.Category
	}
	return o.Region
}

// MonthlyTrend sums amounts per calendar month, ordered chronologically.
func MonthlyTrend(subset []models.Order) []models.MonthlyVolume {
	months := make(map[string]float64)
	for _, o := range subset {
		months[o.Date.Format("2006-01")] += o.Amount
	}

	result := make([]models.MonthlyVolume, 0, len(months))
	for month, volume := range months {
		result = append(result, models.MonthlyVolume{Month: month, Volume: volume})
	}
	slices.SortFunc(result, func(a, b models.MonthlyVolume) int {
		return strings.Compare(a.Month, b.Month)
	})
	return result
}

// CollectFacets lists the distinct regions and categories in the data,
// sorted ascending.
func CollectFacets(orders []models.Order) models.Facets {
	regions := make(map[string]struct{})
	categories := make(map[string]struct{})
	for _, o := range orders {
		regions[o.Region] = struct{}{}
		categories[o.Category] = struct{}{}
	}
	return models.Facets{
		Regions:    sortedKeys(regions),
		Categories: sortedKeys(categories),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SimulatePriceChange projects the unit and revenue impact of a relative
// price change under constant elasticity: demand scales by (1+Δp)^(-e).
// A segment with no orders or a non-positive average price cannot support
// a projection and is flagged insufficient rather than erroring.
func SimulatePriceChange(baseUnits, avgPrice, baselineRevenue, elasticity, deltaP float64) (models.Projection, error) {
	if deltaP < MinPriceDelta || deltaP > MaxPriceDelta {
		return models.Projection{}, fmt.Errorf("price delta %.2f outside [%.2f, %.2f]", deltaP, MinPriceDelta, MaxPriceDelta)
	}
	if elasticity < MinElasticity || elasticity > MaxElasticity {
		return models.Projection{}, fmt.Errorf("elasticity %.2f outside [%.2f, %.2f]", elasticity, MinElasticity, MaxElasticity)
	}
	if baseUnits <= 0 || avgPrice <= 0 {
		return models.Projection{Insufficient: true}, nil
	}

	demandFactor := math.Pow(1+deltaP, -elasticity)
	units := baseUnits * demandFactor
	revenue := units * avgPrice * (1 + deltaP)

	return models.Projection{
		ProjectedUnits:   units,
		ProjectedRevenue: revenue,
		RevenueDelta:     revenue - baselineRevenue,
	}, nil
}
