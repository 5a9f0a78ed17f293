package models

import "time"

// Order is one row of the loaded sales snapshot. Immutable after load.
type Order struct {
	OrderID  string
	Date     time.Time
	Region   string
	Category string
	Amount   float64
}

// DateRange bounds are inclusive. A zero bound applies no constraint on
// that side; a fully zero range applies no date constraint at all.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// FilterSelection carries the constraints chosen by the user for one
// interaction. An empty Region or Category means no constraint on that
// dimension. Selections are built per request and never persisted.
type FilterSelection struct {
	Range    DateRange
	Region   string
	Category string
}

type SummaryMetrics struct {
	TotalSales        float64 `json:"total_sales"`
	AverageOrderValue float64 `json:"average_order_value"`
	OrderCount        int     `json:"order_count"`
}

// GroupTotal is one row of a breakdown, keyed by the grouped dimension value.
type GroupTotal struct {
	Key        string  `json:"key"`
	TotalSales float64 `json:"total_sales"`
}

type MonthlyVolume struct {
	Month  string  `json:"month"`
	Volume float64 `json:"volume"`
}

// Facets lists the distinct categorical values present in the snapshot,
// used to populate the dashboard filter controls.
type Facets struct {
	Regions    []string `json:"regions"`
	Categories []string `json:"categories"`
}

// Projection is the output of the price-change simulator.
type Projection struct {
	ProjectedUnits   float64 `json:"projected_units"`
	ProjectedRevenue float64 `json:"projected_revenue"`
	RevenueDelta     float64 `json:"revenue_delta"`
	Insufficient     bool    `json:"insufficient_data"`
}
