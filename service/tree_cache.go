package service

import (
	"context"
	"runtime"

	"github.com/ludo-technologies/treedit/domain"
	"github.com/ludo-technologies/treedit/internal/ted"
	"golang.org/x/sync/errgroup"
)

// TreeEntry holds the loaded tree for one file, or the error that
// prevented loading it
type TreeEntry struct {
	Tree *ted.Tree
	Err  error
}

// TreeCache stores loaded trees for sharing across pairwise comparisons.
// After Seal() is called the cache is read-only and safe for concurrent
// access without locks.
type TreeCache struct {
	entries map[string]*TreeEntry
	sealed  bool
}

// NewTreeCache creates a new empty TreeCache.
func NewTreeCache() *TreeCache {
	return &TreeCache{
		entries: make(map[string]*TreeEntry),
	}
}

// Put stores an entry. Must be called before Seal().
func (c *TreeCache) Put(path string, entry *TreeEntry) {
	if c.sealed {
		return
	}
	c.entries[path] = entry
}

// Seal marks the cache as read-only.
func (c *TreeCache) Seal() {
	c.sealed = true
}

// Get retrieves a cached entry. Returns (entry, true) on hit.
func (c *TreeCache) Get(path string) (*TreeEntry, bool) {
	e, ok := c.entries[path]
	return e, ok
}

// Len returns the number of entries in the cache.
func (c *TreeCache) Len() int {
	return len(c.entries)
}

// PopulateTreeCache loads all files in parallel and returns a sealed cache.
// A file that fails to load is cached with its error.
func PopulateTreeCache(ctx context.Context, loader *TreeLoader, files []string, labelText bool, concurrency int) *TreeCache {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	entries := make([]*TreeEntry, len(files))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, path := range files {
		g.Go(func() error {
			tree, err := loader.Load(ctx, domain.TreeSource{Path: path}, labelText)
			entries[i] = &TreeEntry{Tree: tree, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	cache := NewTreeCache()
	for i, path := range files {
		cache.Put(path, entries[i])
	}
	cache.Seal()

	return cache
}
