package catalog

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	apperrors "metricqa/internal/errors"
)

// Catalog is the ordered set of metric names a dataset is expected to carry.
type Catalog struct {
	names []string
	set   map[string]struct{}
}

// New builds a catalog from names, trimming whitespace and keeping the first
// occurrence of each name. Blank names are skipped.
func New(names ...string) *Catalog {
	c := &Catalog{set: make(map[string]struct{}, len(names))}
	for _, n := range names {
		c.add(n)
	}
	return c
}

func (c *Catalog) add(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	if _, ok := c.set[name]; ok {
		return
	}
	c.set[name] = struct{}{}
	c.names = append(c.names, name)
}

// Names returns the metric names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of distinct metric names.
func (c *Catalog) Len() int { return len(c.names) }

// Contains reports whether name is a catalog metric.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.set[name]
	return ok
}

// Load reads a newline-delimited metric catalog. A missing file yields an
// error wrapping ErrCatalogNotFound; any other failure wraps ErrCatalogRead.
// An empty file yields an empty catalog and no error.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewCatalogNotFoundError(path, err)
		}
		return nil, apperrors.NewCatalogReadError(path, err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, apperrors.NewCatalogReadError(path, err)
	}
	return c, nil
}

// Parse reads one metric name per line. Lines starting with '#' are comments.
func Parse(r io.Reader) (*Catalog, error) {
	c := New()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		c.add(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// Source yields a catalog on demand. Validation runs load the catalog once
// per run so edits to the file are picked up without a restart.
type Source interface {
	Load(ctx context.Context) (*Catalog, error)
}

// FileSource loads the catalog from a file path on every call.
type FileSource struct {
	Path string
}

// Load implements Source.
func (s FileSource) Load(ctx context.Context) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Load(s.Path)
}

// StaticSource always returns the same catalog.
type StaticSource struct {
	Catalog *Catalog
}

// Load implements Source.
func (s StaticSource) Load(context.Context) (*Catalog, error) {
	return s.Catalog, nil
}
