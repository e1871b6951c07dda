// Package assets handles rig and script loading and caching.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Faultbox/midgard-anim/internal/engine/rig"
	"github.com/Faultbox/midgard-anim/internal/logger"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no search directory holds the requested file.
var ErrNotFound = errors.New("asset not found")

// Manager loads files from a list of search directories.
type Manager struct {
	dirs  []string
	cache *Cache
	rigs  map[string]*rig.Model
	mu    sync.RWMutex
}

// NewManager creates a new asset manager searching dirs.
func NewManager(dirs ...string) *Manager {
	m := &Manager{
		cache: NewCache(),
		rigs:  make(map[string]*rig.Model),
	}
	for _, d := range dirs {
		m.AddDir(d)
	}
	return m
}

// AddDir adds a search directory.
// Directories are searched in reverse order (last added = highest priority).
func (m *Manager) AddDir(dir string) {
	m.mu.Lock()
	m.dirs = append(m.dirs, dir)
	m.mu.Unlock()
}

// Resolve returns the path of name in the highest priority directory holding it.
// Absolute paths are returned as is when they exist.
func (m *Manager) Resolve(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return name, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	// Search directories in reverse order
	for i := len(m.dirs) - 1; i >= 0; i-- {
		path := filepath.Join(m.dirs[i], name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, ErrNotFound)
}

// Load reads a file from the search directories.
func (m *Manager) Load(name string) ([]byte, error) {
	// Check cache first
	if data, ok := m.cache.Get(name); ok {
		return data, nil
	}

	path, err := m.Resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	m.cache.Set(name, data)
	return data, nil
}

// LoadRig returns a new instance of the named rig. The rig is parsed and built once;
// every instance shares its animations and owns its graph.
func (m *Manager) LoadRig(name string) (*rig.Model, error) {
	m.mu.RLock()
	proto, ok := m.rigs[name]
	m.mu.RUnlock()
	if ok {
		return proto.Instance(), nil
	}

	data, err := m.Load(name)
	if err != nil {
		return nil, err
	}
	doc, err := rig.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	proto, err = doc.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	m.mu.Lock()
	if cached, ok := m.rigs[name]; ok {
		proto = cached
	} else {
		m.rigs[name] = proto
	}
	m.mu.Unlock()

	logger.Debug("rig loaded",
		zap.String("name", name),
		zap.Int("nodes", proto.Graph.Len()),
		zap.Int("animations", proto.Animations.Len()),
	)
	return proto.Instance(), nil
}

// Invalidate drops the cached bytes and built rig for name.
func (m *Manager) Invalidate(name string) {
	m.cache.Delete(name)
	m.mu.Lock()
	delete(m.rigs, name)
	m.mu.Unlock()
}

// Stats returns file cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Close drops all cached data.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dirs = nil
	m.rigs = make(map[string]*rig.Model)
	m.cache.Clear()
}

// Cache is a simple in-memory cache for loaded files.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Delete drops a single item.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Len returns the number of cached items.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
