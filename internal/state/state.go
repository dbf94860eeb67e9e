// Package state persists the ordered string lists shared between stages:
// the discovered ticker list and the configured metric-id list. Lists are
// written once and never invalidated; delete the file to force a refresh.
package state

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rickgao/messari-data/internal/writer"
)

// ErrNotFound is returned when a list has not been persisted yet.
var ErrNotFound = errors.New("list not found")

// Kinds of persisted list.
const (
	KindTickers = "tickers"
	KindMetrics = "metrics"
)

// listDocument is the on-disk form of a list.
type listDocument struct {
	Kind    string    `yaml:"kind"`
	SavedAt time.Time `yaml:"saved_at"`
	Items   []string  `yaml:"items"`
}

// SaveList writes items to path, preserving order.
func SaveList(path, kind string, items []string) error {
	doc := listDocument{
		Kind:    kind,
		SavedAt: time.Now().UTC(),
		Items:   items,
	}
	if doc.Items == nil {
		doc.Items = []string{}
	}

	return writer.WriteAtomic(path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode %s list: %w", kind, err)
		}
		return enc.Close()
	})
}

// LoadList reads the list at path. It returns ErrNotFound when the file
// does not exist and an error when the file holds a different kind.
func LoadList(path, kind string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s list %s: %w", kind, path, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s list: %w", kind, err)
	}

	var doc listDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s list: %w", kind, err)
	}
	if doc.Kind != kind {
		return nil, fmt.Errorf("%s holds a %q list, want %q", path, doc.Kind, kind)
	}
	if doc.Items == nil {
		doc.Items = []string{}
	}
	return doc.Items, nil
}

// Store binds the two list paths used by the collector.
type Store struct {
	TickerPath string
	MetricPath string
}

// SaveTickers persists the ticker list.
func (s Store) SaveTickers(tickers []string) error {
	return SaveList(s.TickerPath, KindTickers, tickers)
}

// LoadTickers reads the ticker list.
func (s Store) LoadTickers() ([]string, error) {
	return LoadList(s.TickerPath, KindTickers)
}

// SaveMetrics persists the metric-id list.
func (s Store) SaveMetrics(metrics []string) error {
	return SaveList(s.MetricPath, KindMetrics, metrics)
}

// LoadMetrics reads the metric-id list.
func (s Store) LoadMetrics() ([]string, error) {
	return LoadList(s.MetricPath, KindMetrics)
}
