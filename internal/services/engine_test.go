package services

import (
	"math"
	"testing"
	"time"

	"github.com/Jonikpatel/realtime-dashboard/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleOrders() []models.Order {
	return []models.Order{
		{OrderID: "O001", Date: day(2024, 1, 15), Region: "East", Category: "Electronics", Amount: 100},
		{OrderID: "O002", Date: day(2024, 2, 10), Region: "West", Category: "Home", Amount: 50},
		{OrderID: "O003", Date: day(2024, 3, 5), Region: "East", Category: "Home", Amount: 200},
	}
}

func TestFilter_UnmatchedRegion(t *testing.T) {
	subset, err := Filter(sampleOrders(), models.FilterSelection{Region: "NonexistentRegion"})
	if err != nil {
		t.Fatalf("Filter() unexpected error: %v", err)
	}
	if len(subset) != 0 {
		t.Errorf("expected empty subset for unmatched region, got %d orders", len(subset))
	}
}

func TestFilter_InvalidDateRange(t *testing.T) {
	sel := models.FilterSelection{
		Range: models.DateRange{Start: day(2024, 6, 1), End: day(2024, 1, 1)},
	}

	_, err := Filter(sampleOrders(), sel)
	if err == nil {
		t.Fatal("expected error for start > end")
	}
	if _, ok := err.(*InvalidFilterError); !ok {
		t.Errorf("expected *InvalidFilterError, got %T", err)
	}
}

func TestFilter_Selections(t *testing.T) {
	tests := []struct {
		name    string
		sel     models.FilterSelection
		wantIDs []string
	}{
		{
			name:    "no constraints returns everything",
			sel:     models.FilterSelection{},
			wantIDs: []string{"O001", "O002", "O003"},
		},
		{
			name:    "region only",
			sel:     models.FilterSelection{Region: "East"},
			wantIDs: []string{"O001", "O003"},
		},
		{
			name:    "category only",
			sel:     models.FilterSelection{Category: "Home"},
			wantIDs: []string{"O002", "O003"},
		},
		{
			name:    "region and category are ANDed",
			sel:     models.FilterSelection{Region: "East", Category: "Home"},
			wantIDs: []string{"O003"},
		},
		{
			name: "date range is inclusive on both ends",
			sel: models.FilterSelection{
				Range: models.DateRange{Start: day(2024, 1, 15), End: day(2024, 2, 10)},
			},
			wantIDs: []string{"O001", "O002"},
		},
		{
			name: "open-ended start",
			sel: models.FilterSelection{
				Range: models.DateRange{Start: day(2024, 2, 1)},
			},
			wantIDs: []string{"O002", "O003"},
		},
		{
			name: "range excluding all records",
			sel: models.FilterSelection{
				Range: models.DateRange{Start: day(2025, 1, 1), End: day(2025, 12, 31)},
			},
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subset, err := Filter(sampleOrders(), tt.sel)
			if err != nil {
				t.Fatalf("Filter() unexpected error: %v", err)
			}

			if len(subset) != len(tt.wantIDs) {
				t.Fatalf("got %d orders, want %d", len(subset), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if subset[i].OrderID != id {
					t.Errorf("subset[%d].OrderID = %q, want %q", i, subset[i].OrderID, id)
				}
			}
		})
	}
}

func TestSummarize_Empty(t *testing.T) {
	m := Summarize(nil)
	if m.TotalSales != 0 || m.AverageOrderValue != 0 || m.OrderCount != 0 {
		t.Errorf("Summarize(nil) = %+v, want all zeros", m)
	}
}

func TestSummarize(t *testing.T) {
	m := Summarize(sampleOrders())

	if m.OrderCount != 3 {
		t.Errorf("OrderCount = %d, want 3", m.OrderCount)
	}
	if m.TotalSales != 350 {
		t.Errorf("TotalSales = %f, want 350", m.TotalSales)
	}
	wantAOV := 350.0 / 3.0
	if math.Abs(m.AverageOrderValue-wantAOV) > 1e-9 {
		t.Errorf("AverageOrderValue = %f, want %f", m.AverageOrderValue, wantAOV)
	}
}

func TestSummarize_ZeroMetricsWhenRangeExcludesAll(t *testing.T) {
	sel := models.FilterSelection{
		Range: models.DateRange{Start: day(2030, 1, 1), End: day(2030, 12, 31)},
	}

	subset, err := Filter(sampleOrders(), sel)
	if err != nil {
		t.Fatalf("Filter() unexpected error: %v", err)
	}

	m := Summarize(subset)
	if m.TotalSales != 0 || m.AverageOrderValue != 0 || m.OrderCount != 0 {
		t.Errorf("metrics for excluded range = %+v, want all zeros", m)
	}
}

func TestBreakdown_ByRegion(t *testing.T) {
	orders := []models.Order{
		{Region: "East", Amount: 100},
		{Region: "West", Amount: 50},
		{Region: "East", Amount: 200},
	}

	got := Breakdown(orders, DimensionRegion)

	want := []models.GroupTotal{
		{Key: "East", TotalSales: 300},
		{Key: "West", TotalSales: 50},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d groups, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("breakdown[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBreakdown_TiesBrokenLexically(t *testing.T) {
	orders := []models.Order{
		{Region: "West", Amount: 75},
		{Region: "East", Amount: 75},
		{Region: "North", Amount: 75},
	}

	got := Breakdown(orders, DimensionRegion)

	wantOrder := []string{"East", "North", "West"}
	for i, key := range wantOrder {
		if got[i].Key != key {
			t.Errorf("breakdown[%d].Key = %q, want %q", i, got[i].Key, key)
		}
	}
}

func TestBreakdown_Idempotent(t *testing.T) {
	first := Breakdown(sampleOrders(), DimensionRegion)

	// Re-grouping the breakdown's own output must reproduce the ordering.
	regrouped := make([]models.Order, 0, len(first))
	for _, g := range first {
		regrouped = append(regrouped, models.Order{Region: g.Key, Amount: g.TotalSales})
	}

	second := Breakdown(regrouped, DimensionRegion)
	if len(second) != len(first) {
		t.Fatalf("got %d groups, want %d", len(second), len(first))
	}
	for i := range first {
		if second[i] != first[i] {
			t.Errorf("re-sorted breakdown[%d] = %+v, want %+v", i, second[i], first[i])
		}
	}
}

func TestBreakdown_TotalsMatchSummary(t *testing.T) {
	selections := []models.FilterSelection{
		{},
		{Region: "East"},
		{Category: "Home"},
		{Range: models.DateRange{Start: day(2024, 2, 1), End: day(2024, 12, 31)}},
	}

	for _, sel := range selections {
		subset, err := Filter(sampleOrders(), sel)
		if err != nil {
			t.Fatalf("Filter() unexpected error: %v", err)
		}

		var sum float64
		for _, g := range Breakdown(subset, DimensionRegion) {
			sum += g.TotalSales
		}

		total := Summarize(subset).TotalSales
		if math.Abs(sum-total) > 1e-9 {
			t.Errorf("selection %+v: breakdown sum %f != summary total %f", sel, sum, total)
		}
	}
}

func TestBreakdown_ByCategory(t *testing.T) {
	got := Breakdown(sampleOrders(), DimensionCategory)

	want := []models.GroupTotal{
		{Key: "Home", TotalSales: 250},
		{Key: "Electronics", TotalSales: 100},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d groups, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("breakdown[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseDimension(t *testing.T) {
	tests := []struct {
		input   string
		want    Dimension
		wantErr bool
	}{
		{"region", DimensionRegion, false},
		{"Region", DimensionRegion, false},
		{"category", DimensionCategory, false},
		{"country", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseDimension(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDimension(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDimension(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMonthlyTrend_Chronological(t *testing.T) {
	orders := []models.Order{
		{Date: day(2024, 3, 1), Amount: 10},
		{Date: day(2024, 1, 15), Amount: 20},
		{Date: day(2024, 1, 20), Amount: 5},
		{Date: day(2024, 2, 2), Amount: 30},
	}

	got := MonthlyTrend(orders)

	want := []models.MonthlyVolume{
		{Month: "2024-01", Volume: 25},
		{Month: "2024-02", Volume: 30},
		{Month: "2024-03", Volume: 10},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d months, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("trend[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCollectFacets(t *testing.T) {
	facets := CollectFacets(sampleOrders())

	wantRegions := []string{"East", "West"}
	if len(facets.Regions) != len(wantRegions) {
		t.Fatalf("got %d regions, want %d", len(facets.Regions), len(wantRegions))
	}
	for i, r := range wantRegions {
		if facets.Regions[i] != r {
			t.Errorf("regions[%d] = %q, want %q", i, facets.Regions[i], r)
		}
	}

	wantCategories := []string{"Electronics", "Home"}
	for i, c := range wantCategories {
		if facets.Categories[i] != c {
			t.Errorf("categories[%d] = %q, want %q", i, facets.Categories[i], c)
		}
	}
}

func TestSimulatePriceChange(t *testing.T) {
	baseUnits, avgPrice, baseline := 100.0, 50.0, 5000.0
	elasticity, deltaP := 1.2, 0.05

	got, err := SimulatePriceChange(baseUnits, avgPrice, baseline, elasticity, deltaP)
	if err != nil {
		t.Fatalf("SimulatePriceChange() unexpected error: %v", err)
	}

	wantUnits := baseUnits * math.Pow(1+deltaP, -elasticity)
	wantRevenue := wantUnits * avgPrice * (1 + deltaP)

	if math.Abs(got.ProjectedUnits-wantUnits) > 1e-9 {
		t.Errorf("ProjectedUnits = %f, want %f", got.ProjectedUnits, wantUnits)
	}
	if math.Abs(got.ProjectedRevenue-wantRevenue) > 1e-9 {
		t.Errorf("ProjectedRevenue = %f, want %f", got.ProjectedRevenue, wantRevenue)
	}
	if math.Abs(got.RevenueDelta-(wantRevenue-baseline)) > 1e-9 {
		t.Errorf("RevenueDelta = %f, want %f", got.RevenueDelta, wantRevenue-baseline)
	}
	if got.Insufficient {
		t.Error("projection should not be flagged insufficient")
	}
}

func TestSimulatePriceChange_Bounds(t *testing.T) {
	tests := []struct {
		name       string
		elasticity float64
		deltaP     float64
	}{
		{"delta too low", 1.2, -0.25},
		{"delta too high", 1.2, 0.30},
		{"elasticity too low", 0.4, 0.05},
		{"elasticity too high", 2.5, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SimulatePriceChange(100, 50, 5000, tt.elasticity, tt.deltaP); err == nil {
				t.Error("expected out-of-range error")
			}
		})
	}
}

func TestSimulatePriceChange_InsufficientData(t *testing.T) {
	got, err := SimulatePriceChange(0, 0, 0, 1.2, 0.05)
	if err != nil {
		t.Fatalf("SimulatePriceChange() unexpected error: %v", err)
	}
	if !got.Insufficient {
		t.Error("expected insufficient flag for empty segment")
	}
	if got.ProjectedUnits != 0 || got.ProjectedRevenue != 0 {
		t.Errorf("expected zero projection, got %+v", got)
	}
}
