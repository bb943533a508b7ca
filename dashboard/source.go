package dashboard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hearthwatch/sdk/document"
)

// ErrConfigNotFound is returned by Source.Load when a dashboard exists but
// has no stored document. Inspection skips such dashboards.
var ErrConfigNotFound = errors.New("dashboard: config not found")

// Source provides the dashboards to inspect and their documents.
//
// Loaded documents are treated as immutable by every consumer; sources may
// hand out cached trees.
type Source interface {
	// List returns the dashboards the source knows about.
	List(ctx context.Context) ([]Dashboard, error)

	// Load returns the configuration document for the given URL path.
	// Returns ErrConfigNotFound when no document is stored.
	Load(ctx context.Context, urlPath string) (map[string]any, error)
}

// FSSource serves dashboards from a directory of <url_path>.yaml files.
// Documents are parsed lazily and cached until the file's mtime changes.
type FSSource struct {
	dir string

	mu    sync.RWMutex
	cache map[string]fsCacheEntry
}

type fsCacheEntry struct {
	modTime time.Time
	doc     map[string]any
}

// NewFSSource returns a Source reading from dir.
func NewFSSource(dir string) *FSSource {
	return &FSSource{
		dir:   dir,
		cache: make(map[string]fsCacheEntry),
	}
}

// List returns one dashboard per .yaml file in the directory, sorted by URL
// path. Titles are left empty; the document's own title is used instead.
func (s *FSSource) List(ctx context.Context) ([]Dashboard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list dashboards in %s: %w", s.dir, err)
	}

	var dashboards []Dashboard
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		dashboards = append(dashboards, Dashboard{
			URLPath: strings.TrimSuffix(name, ext),
			Mode:    ModeYAML,
		})
	}

	sort.Slice(dashboards, func(i, j int) bool { return dashboards[i].URLPath < dashboards[j].URLPath })
	return dashboards, nil
}

// Load parses the dashboard's file, serving a cached document while the file
// is unchanged.
func (s *FSSource) Load(ctx context.Context, urlPath string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	urlPath = NormalizeURLPath(urlPath)
	path, info, err := s.stat(urlPath)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	cached, ok := s.cache[urlPath]
	s.mu.RUnlock()
	if ok && cached.modTime.Equal(info.ModTime()) {
		return cached.doc, nil
	}

	doc, err := document.ParseFile(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[urlPath] = fsCacheEntry{modTime: info.ModTime(), doc: doc}
	s.mu.Unlock()

	return doc, nil
}

// stat locates the backing file, trying .yaml then .yml.
func (s *FSSource) stat(urlPath string) (string, os.FileInfo, error) {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(s.dir, urlPath+ext)
		info, err := os.Stat(path)
		if err == nil {
			return path, info, nil
		}
		if !os.IsNotExist(err) {
			return "", nil, fmt.Errorf("failed to stat dashboard %s: %w", urlPath, err)
		}
	}
	return "", nil, fmt.Errorf("dashboard %s: %w", urlPath, ErrConfigNotFound)
}

// MemorySource serves dashboards from memory. It is safe for concurrent use
// and intended for tests and embedded setups.
type MemorySource struct {
	mu         sync.RWMutex
	dashboards map[string]Dashboard
	documents  map[string]map[string]any
}

// NewMemorySource returns an empty MemorySource.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		dashboards: make(map[string]Dashboard),
		documents:  make(map[string]map[string]any),
	}
}

// Add registers a dashboard with its document. A nil document registers the
// dashboard without one, so Load reports ErrConfigNotFound.
func (s *MemorySource) Add(d Dashboard, doc map[string]any) {
	urlPath := NormalizeURLPath(d.URLPath)
	d.URLPath = urlPath

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dashboards[urlPath] = d
	if doc != nil {
		s.documents[urlPath] = doc
	} else {
		delete(s.documents, urlPath)
	}
}

// SetDocument replaces the document of a registered dashboard.
func (s *MemorySource) SetDocument(urlPath string, doc map[string]any) {
	urlPath = NormalizeURLPath(urlPath)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dashboards[urlPath]; !ok {
		s.dashboards[urlPath] = Dashboard{URLPath: urlPath, Mode: ModeStorage}
	}
	if doc != nil {
		s.documents[urlPath] = doc
	} else {
		delete(s.documents, urlPath)
	}
}

// Remove drops a dashboard and its document.
func (s *MemorySource) Remove(urlPath string) {
	urlPath = NormalizeURLPath(urlPath)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dashboards, urlPath)
	delete(s.documents, urlPath)
}

// List returns the registered dashboards sorted by URL path.
func (s *MemorySource) List(ctx context.Context) ([]Dashboard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	dashboards := make([]Dashboard, 0, len(s.dashboards))
	for _, d := range s.dashboards {
		dashboards = append(dashboards, d)
	}
	sort.Slice(dashboards, func(i, j int) bool { return dashboards[i].URLPath < dashboards[j].URLPath })
	return dashboards, nil
}

// Load returns the stored document, or ErrConfigNotFound when the dashboard
// has none.
func (s *MemorySource) Load(ctx context.Context, urlPath string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	urlPath = NormalizeURLPath(urlPath)

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[urlPath]
	if !ok {
		return nil, fmt.Errorf("dashboard %s: %w", urlPath, ErrConfigNotFound)
	}
	return doc, nil
}
