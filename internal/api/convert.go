package api

import (
	"bytes"
	"encoding/json"
	"net/url"

	"github.com/rickgao/messari-data/internal/model"
)

// CellString renders a raw JSON cell as CSV text without coercing its type:
// strings are unquoted, null becomes empty and anything else keeps its
// literal JSON text (so 1.50 stays "1.50").
func CellString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}

	return string(trimmed)
}

// ToRecord converts a time-series response into a model.TimeSeriesRecord.
// Column headers come from data.parameters.columns and rows from data.values.
func (r *TimeSeriesResponse) ToRecord(assetKey, metricID string) model.TimeSeriesRecord {
	columns := make([]string, len(r.Data.Parameters.Columns))
	copy(columns, r.Data.Parameters.Columns)

	rows := make([][]string, 0, len(r.Data.Values))
	for _, values := range r.Data.Values {
		row := make([]string, len(values))
		for i, cell := range values {
			row[i] = CellString(cell)
		}
		rows = append(rows, row)
	}

	return model.TimeSeriesRecord{
		MetricID: metricID,
		AssetKey: assetKey,
		Columns:  columns,
		Rows:     rows,
	}
}

// WindowQuery renders the window as time-series query parameters.
func WindowQuery(w model.Window) url.Values {
	query := url.Values{}
	if w.Start != "" {
		query.Set("start", w.Start)
	}
	if w.End != "" {
		query.Set("end", w.End)
	}
	if w.Interval != "" {
		query.Set("interval", w.Interval)
	}
	return query
}
