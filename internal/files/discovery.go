package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"metricqa/internal/dataset"
	apperrors "metricqa/internal/errors"
)

// FileInfo represents information about a discovered dataset file
type FileInfo struct {
	Path    string
	Name    string
	Format  dataset.Format
	Size    int64
	ModTime time.Time
}

// Discovery finds dataset files relative to a base directory
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindDatasets lists the readable dataset files (.csv, .xlsx) directly inside
// dir, oldest first. Subdirectories are not descended.
func (d *Discovery) FindDatasets(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		format, err := dataset.FormatFromPath(entry.Name())
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Format:  format,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.Before(files[j].ModTime)
	})

	return files, nil
}

// LatestDataset returns the most recently modified dataset file in dir.
func (d *Discovery) LatestDataset(dir string) (FileInfo, error) {
	files, err := d.FindDatasets(dir)
	if err != nil {
		return FileInfo{}, apperrors.NewStorageError("failed to list datasets", err)
	}
	latest, ok := GetLatestFile(files)
	if !ok {
		return FileInfo{}, apperrors.NewNotFoundError(fmt.Sprintf("dataset in %s", d.resolve(dir)))
	}
	return latest, nil
}

// ResolveDataset turns a path that may name a file or a directory into a
// dataset file. Directories resolve to their newest dataset.
func (d *Discovery) ResolveDataset(path string) (string, error) {
	full := d.resolve(path)
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.NewNotFoundError(fmt.Sprintf("dataset %s", full))
		}
		return "", apperrors.NewStorageError("failed to stat dataset", err)
	}
	if !info.IsDir() {
		return full, nil
	}

	latest, err := d.LatestDataset(full)
	if err != nil {
		return "", err
	}
	return latest.Path, nil
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if !file.ModTime.Before(latest.ModTime) {
			latest = file
		}
	}

	return latest, true
}
