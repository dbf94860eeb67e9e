package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout_Paths(t *testing.T) {
	l := New("out")

	assert.Equal(t, "out", l.Root())
	assert.Equal(t, filepath.Join("out", "price"), l.MetricDir("price"))
	assert.Equal(t, filepath.Join("out", "price", "BTC.csv"), l.AssetFile("price", "BTC"))
}

func TestLayout_ProvisionIdempotent(t *testing.T) {
	root := filepath.Join(t.TempDir(), "series")
	l := New(root)

	created, err := l.Provision([]string{"price", "txn.cnt"})
	require.NoError(t, err)
	assert.Len(t, created, 2)

	for _, m := range []string{"price", "txn.cnt"} {
		ok, err := l.HasMetricDir(m)
		require.NoError(t, err)
		assert.True(t, ok, m)
	}

	created, err = l.Provision([]string{"price", "txn.cnt"})
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestLayout_ProvisionKeepsExistingFiles(t *testing.T) {
	l := New(t.TempDir())
	_, err := l.Provision([]string{"price"})
	require.NoError(t, err)

	path := l.AssetFile("price", "BTC")
	require.NoError(t, os.WriteFile(path, []byte("timestamp,price\n"), 0644))

	_, err = l.Provision([]string{"price"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "timestamp,price\n", string(data))
}

func TestLayout_ProvisionRejectsFileInTheWay(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "price"), nil, 0644))

	_, err := New(root).Provision([]string{"price"})
	assert.Error(t, err)
}

func TestLayout_HasAssetFile(t *testing.T) {
	l := New(t.TempDir())

	ok, err := l.HasMetricDir("price")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.HasAssetFile("price", "BTC")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = l.Provision([]string{"price"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(l.AssetFile("price", "BTC"), nil, 0644))

	ok, err = l.HasAssetFile("price", "BTC")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckName(t *testing.T) {
	for _, name := range []string{"BTC", "txn.cnt", "1INCH", "..."} {
		assert.NoError(t, CheckName(name), name)
	}
	for _, name := range []string{"", ".", "..", "../x", "A/B", `A\B`, "/abs"} {
		assert.ErrorIs(t, CheckName(name), ErrInvalidName, name)
	}
}

func TestLayout_ProvisionRejectsEscapingMetric(t *testing.T) {
	root := filepath.Join(t.TempDir(), "series")
	l := New(root)

	_, err := l.Provision([]string{"price", "../outside"})
	require.ErrorIs(t, err, ErrInvalidName)

	assert.NoDirExists(t, filepath.Join(filepath.Dir(root), "outside"))
}
