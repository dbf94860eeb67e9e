package model

import "time"

// AssetKey identifies an asset by ID, slug or symbol.
type AssetKey = string

// MetricID names a supported time-series metric (e.g. "price").
type MetricID = string

// TimeSeriesRecord is one (metric, asset) series: named columns plus rows of
// values rendered exactly as the API returned them.
type TimeSeriesRecord struct {
	MetricID MetricID
	AssetKey AssetKey
	Columns  []string
	Rows     [][]string
}

// Window is the date range and interval requested for a time series.
type Window struct {
	Start    string // YYYY-MM-DD, inclusive
	End      string // YYYY-MM-DD, inclusive
	Interval string // 5m, 15m, 30m, 1h, 1d, 1w
}

// DateLayout is the format used for Window bounds.
const DateLayout = "2006-01-02"

// DailyWindow returns a 1d window from start up to the day containing now.
func DailyWindow(start string, now time.Time) Window {
	return Window{
		Start:    start,
		End:      now.Format(DateLayout),
		Interval: "1d",
	}
}
