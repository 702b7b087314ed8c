package cache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/l3aro/go-guard-query/pkg/cfg"
)

// snapshotVersion guards the on-disk format; bump it when the graph
// model changes.
const snapshotVersion = 1

type snapshot struct {
	Version int              `msgpack:"version"`
	Entries []snapshotRecord `msgpack:"entries"`
}

type snapshotRecord struct {
	Key   Key        `msgpack:"key"`
	Graph *cfg.Graph `msgpack:"graph"`
}

// Save writes the cache contents to w in msgpack form, most recently used
// first so a size-capped Load keeps the hottest entries.
func (c *GraphCache) Save(w io.Writer) error {
	c.mu.Lock()
	records := make([]snapshotRecord, 0, len(c.items))
	for e := c.head; e != nil; e = e.next {
		records = append(records, snapshotRecord{Key: e.key, Graph: e.graph})
	}
	c.mu.Unlock()

	snap := snapshot{Version: snapshotVersion, Entries: records}
	if err := msgpack.NewEncoder(w).Encode(&snap); err != nil {
		return fmt.Errorf("encoding cache snapshot: %w", err)
	}
	return nil
}

// Load restores entries from r, dropping any whose source file changed
// since the snapshot was taken.
func (c *GraphCache) Load(r io.Reader) error {
	var snap snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("decoding cache snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("unsupported cache snapshot version %d", snap.Version)
	}

	// Insert in reverse so the snapshot's first entry ends up most
	// recently used.
	for i := len(snap.Entries) - 1; i >= 0; i-- {
		rec := snap.Entries[i]
		info, err := os.Stat(rec.Key.Path)
		if err != nil || info.ModTime().UnixNano() != rec.Key.ModTime {
			continue
		}
		c.Put(rec.Key, rec.Graph)
	}
	return nil
}

// SaveFile persists the cache to path, creating parent directories.
func (c *GraphCache) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating cache file %s: %w", path, err)
	}
	defer f.Close()
	return c.Save(f)
}

// LoadFile restores the cache from path; a missing file is not an error.
func (c *GraphCache) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening cache file %s: %w", path, err)
	}
	defer f.Close()
	return c.Load(f)
}
