// Package layout maps (metric, asset) pairs onto the output tree: one
// directory per metric under a root, one CSV file per asset inside it.
package layout

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileExt is the extension of every series file.
const FileExt = ".csv"

// ErrInvalidName is returned for metric or asset names that cannot be used
// as a single path element under the root.
var ErrInvalidName = errors.New("invalid path name")

// CheckName rejects names that are empty, contain a path separator, or
// would resolve outside their parent directory ("..", "." or an absolute
// path).
func CheckName(name string) error {
	if name == "" || name == "." || strings.ContainsAny(name, `/\`) || !filepath.IsLocal(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Layout is a root directory holding per-metric output directories.
type Layout struct {
	root string
}

// New returns a Layout rooted at root.
func New(root string) *Layout {
	return &Layout{root: root}
}

// Root returns the root directory.
func (l *Layout) Root() string {
	return l.root
}

// MetricDir returns the directory holding every series for metric.
func (l *Layout) MetricDir(metric string) string {
	return filepath.Join(l.root, metric)
}

// AssetFile returns the series file path for (metric, asset).
func (l *Layout) AssetFile(metric, asset string) string {
	return filepath.Join(l.MetricDir(metric), asset+FileExt)
}

// Provision ensures a directory exists for every metric, creating the root
// as needed. It is idempotent and returns the directories it created.
func (l *Layout) Provision(metrics []string) ([]string, error) {
	var created []string
	for _, metric := range metrics {
		if err := CheckName(metric); err != nil {
			return created, fmt.Errorf("metric: %w", err)
		}
		dir := l.MetricDir(metric)
		ok, err := isDir(dir)
		if err != nil {
			return created, err
		}
		if ok {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return created, fmt.Errorf("create metric dir %s: %w", dir, err)
		}
		created = append(created, dir)
	}
	return created, nil
}

// HasMetricDir reports whether the directory for metric exists.
func (l *Layout) HasMetricDir(metric string) (bool, error) {
	return isDir(l.MetricDir(metric))
}

// HasAssetFile reports whether a series file exists for (metric, asset).
func (l *Layout) HasAssetFile(metric, asset string) (bool, error) {
	info, err := os.Stat(l.AssetFile(metric, asset))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat series file: %w", err)
	}
	return info.Mode().IsRegular(), nil
}

func isDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%s exists and is not a directory", path)
	}
	return true, nil
}
