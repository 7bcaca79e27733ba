package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds every resolved, absolute path the application touches.
type Paths struct {
	BaseDir     string
	DataDir     string
	ReportsDir  string
	LogsDir     string
	CatalogFile string
}

// ResolvePaths turns the configured paths into absolute ones rooted at BaseDir.
func (c *Config) ResolvePaths() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		BaseDir:     base,
		DataDir:     resolve(c.Paths.DataDir),
		ReportsDir:  resolve(c.Paths.ReportsDir),
		LogsDir:     resolve(c.Paths.LogsDir),
		CatalogFile: resolve(c.Paths.CatalogFile),
	}, nil
}

// EnsureDirectories creates the output directories. The catalog is an input
// and is never created here.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ReportPath returns a file path inside the reports directory.
func (p *Paths) ReportPath(name string) string {
	return filepath.Join(p.ReportsDir, name)
}

// LogPathResolution logs the resolved paths at debug level.
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Resolved application paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("data_dir", p.DataDir),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("catalog_file", p.CatalogFile))
}
