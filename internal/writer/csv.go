package writer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/rickgao/messari-data/internal/model"
)

// WriteCSV writes rec to path as CSV: the column headers, then one line per
// row. Values are written verbatim. It returns the number of data rows.
func WriteCSV(path string, rec model.TimeSeriesRecord) (int, error) {
	err := WriteAtomic(path, func(w io.Writer) error {
		return EncodeCSV(w, rec)
	})
	if err != nil {
		return 0, fmt.Errorf("write %s/%s: %w", rec.MetricID, rec.AssetKey, err)
	}
	return len(rec.Rows), nil
}

// EncodeCSV writes rec as CSV to w.
func EncodeCSV(w io.Writer, rec model.TimeSeriesRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(rec.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rec.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
