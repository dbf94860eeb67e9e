package manifest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rickgao/messari-data/internal/writer"
)

// FileStore keeps the manifest in a YAML file, rewritten atomically on
// every Record. It is meant for one process at a time.
type FileStore struct {
	path string

	mu      sync.Mutex
	entries map[string]Entry
}

type fileDocument struct {
	Entries []Entry `yaml:"entries"`
}

// OpenFile loads the manifest at path, starting empty if it does not exist.
func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{
		path:    path,
		entries: make(map[string]Entry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	for _, e := range doc.Entries {
		s.entries[key(e.MetricID, e.AssetKey)] = e
	}

	return s, nil
}

// Lookup returns the entry for (metricID, assetKey).
func (s *FileStore) Lookup(_ context.Context, metricID, assetKey string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key(metricID, assetKey)]
	return e, ok, nil
}

// Record stores e and flushes the manifest to disk.
func (s *FileStore) Record(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key(e.MetricID, e.AssetKey)] = e
	return s.flushLocked()
}

// Entries returns every entry ordered by metric then asset.
func (s *FileStore) Entries(_ context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked(), nil
}

// Close is a no-op; every Record is already on disk.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) sortedLocked() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MetricID != out[j].MetricID {
			return out[i].MetricID < out[j].MetricID
		}
		return out[i].AssetKey < out[j].AssetKey
	})
	return out
}

func (s *FileStore) flushLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}

	doc := fileDocument{Entries: s.sortedLocked()}
	return writer.WriteAtomic(s.path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode manifest: %w", err)
		}
		return enc.Close()
	})
}
