// Package cache provides an LRU cache for built control flow graphs with
// msgpack disk persistence. Entries are keyed by file, function, and file
// modification time, so a changed source file naturally misses.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/l3aro/go-guard-query/pkg/cfg"
)

// ErrNotFound is returned when a key has no live entry.
var ErrNotFound = errors.New("cache entry not found")

// Key identifies one cached graph.
type Key struct {
	Path     string `msgpack:"path"`
	Function string `msgpack:"function"`
	ModTime  int64  `msgpack:"mod_time"` // source mtime in unix nanoseconds
}

// NewKey builds a Key for a source file and function, stamping the
// file's current modification time.
func NewKey(path, function string) (Key, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Key{}, fmt.Errorf("resolving %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Key{}, fmt.Errorf("stat %s: %w", abs, err)
	}
	return Key{Path: abs, Function: function, ModTime: info.ModTime().UnixNano()}, nil
}

type entry struct {
	key        Key
	graph      *cfg.Graph
	accessedAt time.Time
	prev, next *entry
}

// GraphCache is an in-memory LRU of built graphs with optional disk
// persistence.
type GraphCache struct {
	mu         sync.Mutex
	items      map[Key]*entry
	head, tail *entry // head is most recently used
	maxEntries int
}

// New creates a GraphCache holding at most maxEntries graphs. Zero or
// negative means unlimited.
func New(maxEntries int) *GraphCache {
	return &GraphCache{
		items:      make(map[Key]*entry),
		maxEntries: maxEntries,
	}
}

// Get returns the cached graph for key, if present.
func (c *GraphCache) Get(key Key) (*cfg.Graph, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return nil, false
	}
	e.accessedAt = time.Now()
	c.moveToFront(e)
	return e.graph, true
}

// Put stores a graph under key, evicting the least recently used entry
// when over capacity.
func (c *GraphCache) Put(key Key, graph *cfg.Graph) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.graph = graph
		e.accessedAt = time.Now()
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, graph: graph, accessedAt: time.Now()}
	c.items[key] = e
	c.pushFront(e)

	for c.maxEntries > 0 && len(c.items) > c.maxEntries {
		oldest := c.tail
		if oldest == nil {
			break
		}
		c.unlink(oldest)
		delete(c.items, oldest.key)
	}
}

// Delete removes one entry.
func (c *GraphCache) Delete(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.unlink(e)
		delete(c.items, key)
	}
}

// Len returns the number of live entries.
func (c *GraphCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *GraphCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.pushFront(e)
}

func (c *GraphCache) pushFront(e *entry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *GraphCache) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev, e.next = nil, nil
}
