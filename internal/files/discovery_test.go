package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metricqa/internal/dataset"
	apperrors "metricqa/internal/errors"
)

func createFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("asset,time\n"), 0644))
		mod := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, os.Chtimes(path, mod, mod))
	}
}

func TestFindDatasets(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  []string
	}{
		{"mixed types", []string{"a.csv", "notes.txt", "b.xlsx", "c.json"}, []string{"a.csv", "b.xlsx"}},
		{"case insensitive", []string{"A.CSV", "B.XLSX"}, []string{"A.CSV", "B.XLSX"}},
		{"modification time before name", []string{"b.csv", "a.csv"}, []string{"b.csv", "a.csv"}},
		{"none", []string{"readme.md"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			createFiles(t, dir, tt.files...)
			require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0755))

			found, err := NewDiscovery("").FindDatasets(dir)
			require.NoError(t, err)

			var names []string
			for _, f := range found {
				names = append(names, f.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestFindDatasets_RelativeToBase(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "data"), 0755))
	createFiles(t, filepath.Join(base, "data"), "metrics.xlsx")

	found, err := NewDiscovery(base).FindDatasets("data")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, dataset.FormatXLSX, found[0].Format)
	assert.Equal(t, filepath.Join(base, "data", "metrics.xlsx"), found[0].Path)
}

func TestResolveDataset(t *testing.T) {
	dir := t.TempDir()
	createFiles(t, dir, "2024-01-01.csv", "2024-01-02.csv", "2024-01-03.xlsx")
	d := NewDiscovery("")

	t.Run("file", func(t *testing.T) {
		path, err := d.ResolveDataset(filepath.Join(dir, "2024-01-01.csv"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "2024-01-01.csv"), path)
	})

	t.Run("directory picks newest", func(t *testing.T) {
		path, err := d.ResolveDataset(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "2024-01-03.xlsx"), path)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := d.ResolveDataset(filepath.Join(dir, "absent.csv"))
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := d.ResolveDataset(t.TempDir())
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
	})
}

func TestGetLatestFile(t *testing.T) {
	_, ok := GetLatestFile(nil)
	assert.False(t, ok)

	now := time.Now()
	latest, ok := GetLatestFile([]FileInfo{
		{Name: "a", ModTime: now.Add(-time.Hour)},
		{Name: "b", ModTime: now},
		{Name: "c", ModTime: now.Add(-2 * time.Hour)},
	})
	require.True(t, ok)
	assert.Equal(t, "b", latest.Name)
}
