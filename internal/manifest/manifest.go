// Package manifest records the outcome of every (metric, asset) fetch so a
// run can tell which series are complete and which failed, instead of
// treating file existence as the only evidence.
package manifest

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of a fetch.
type Status string

const (
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Entry is the latest recorded outcome for one (metric, asset) pair.
type Entry struct {
	RunID     uuid.UUID `yaml:"run_id"`
	MetricID  string    `yaml:"metric_id"`
	AssetKey  string    `yaml:"asset_key"`
	Status    Status    `yaml:"status"`
	Rows      int       `yaml:"rows"`
	Path      string    `yaml:"path,omitempty"`
	Error     string    `yaml:"error,omitempty"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// Store persists manifest entries. Record replaces any previous entry for
// the same pair.
type Store interface {
	Lookup(ctx context.Context, metricID, assetKey string) (Entry, bool, error)
	Record(ctx context.Context, e Entry) error
	Entries(ctx context.Context) ([]Entry, error)
	Close() error
}

// Nop is a Store that records nothing.
type Nop struct{}

func (Nop) Lookup(context.Context, string, string) (Entry, bool, error) { return Entry{}, false, nil }
func (Nop) Record(context.Context, Entry) error                         { return nil }
func (Nop) Entries(context.Context) ([]Entry, error)                    { return nil, nil }
func (Nop) Close() error                                                { return nil }

func key(metricID, assetKey string) string {
	return metricID + "\x00" + assetKey
}
