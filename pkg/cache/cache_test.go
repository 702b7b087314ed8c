package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-guard-query/pkg/cfg"
)

func testGraph(name string) *cfg.Graph {
	return &cfg.Graph{
		FunctionName: name,
		Path:         "/tmp/" + name + ".go",
		Language:     "go",
		Blocks: []*cfg.Block{
			{ID: 0, Kind: cfg.BlockEntry},
			{ID: 1, Kind: cfg.BlockExit},
		},
		EntryID: 0,
		ExitID:  1,
	}
}

func TestPutGet(t *testing.T) {
	c := New(4)
	key := Key{Path: "/a.go", Function: "f", ModTime: 1}

	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Put(key, testGraph("f"))
	g, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "f", g.FunctionName)
	assert.Equal(t, 1, c.Len())
}

func TestPutReplacesExisting(t *testing.T) {
	c := New(4)
	key := Key{Path: "/a.go", Function: "f", ModTime: 1}

	c.Put(key, testGraph("first"))
	c.Put(key, testGraph("second"))

	g, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "second", g.FunctionName)
	assert.Equal(t, 1, c.Len())
}

func TestLRUEviction(t *testing.T) {
	c := New(2)
	ka := Key{Path: "/a.go", Function: "a"}
	kb := Key{Path: "/b.go", Function: "b"}
	kc := Key{Path: "/c.go", Function: "c"}

	c.Put(ka, testGraph("a"))
	c.Put(kb, testGraph("b"))

	// Touch a so b becomes the eviction candidate.
	_, ok := c.Get(ka)
	require.True(t, ok)

	c.Put(kc, testGraph("c"))
	assert.Equal(t, 2, c.Len())

	_, ok = c.Get(kb)
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = c.Get(ka)
	assert.True(t, ok)
	_, ok = c.Get(kc)
	assert.True(t, ok)
}

func TestUnlimitedCapacity(t *testing.T) {
	c := New(0)
	for i := 0; i < 100; i++ {
		c.Put(Key{Path: "/a.go", Function: "f", ModTime: int64(i)}, testGraph("f"))
	}
	assert.Equal(t, 100, c.Len())
}

func TestDelete(t *testing.T) {
	c := New(4)
	key := Key{Path: "/a.go", Function: "f"}

	c.Put(key, testGraph("f"))
	c.Delete(key)

	_, ok := c.Get(key)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	// Deleting a missing key is a no-op.
	c.Delete(key)
}

func TestNewKeyStampsModTime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0644))

	key, err := NewKey(path, "main")
	require.NoError(t, err)
	assert.Equal(t, "main", key.Function)
	assert.NotZero(t, key.ModTime)
	assert.True(t, filepath.IsAbs(key.Path))

	_, err = NewKey(filepath.Join(dir, "missing.go"), "main")
	assert.Error(t, err)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0644))

	key, err := NewKey(path, "main")
	require.NoError(t, err)

	c := New(4)
	c.Put(key, testGraph("main"))

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))

	restored := New(4)
	require.NoError(t, restored.Load(&buf))
	require.Equal(t, 1, restored.Len())

	g, ok := restored.Get(key)
	require.True(t, ok)
	assert.Equal(t, "main", g.FunctionName)
	assert.Len(t, g.Blocks, 2)
}

func TestLoadDropsStaleEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0644))

	key, err := NewKey(path, "main")
	require.NoError(t, err)

	c := New(4)
	c.Put(key, testGraph("main"))

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))

	// Rewrite the file with a newer mtime so the snapshot entry is stale.
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.WriteFile(path, []byte("package main // changed\n"), 0644))
	require.NoError(t, os.Chtimes(path, future, future))

	restored := New(4)
	require.NoError(t, restored.Load(&buf))
	assert.Equal(t, 0, restored.Len())
}

func TestLoadPreservesRecencyOrder(t *testing.T) {
	dir := t.TempDir()
	var keys []Key
	for _, name := range []string{"a", "b", "c"} {
		path := filepath.Join(dir, name+".go")
		require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0644))
		key, err := NewKey(path, name)
		require.NoError(t, err)
		keys = append(keys, key)
	}

	c := New(3)
	for i, key := range keys {
		c.Put(key, testGraph([]string{"a", "b", "c"}[i]))
	}
	// c is now most recent, a least recent.

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))

	// Capacity 2 keeps only the two hottest entries on load.
	restored := New(2)
	require.NoError(t, restored.Load(&buf))
	assert.Equal(t, 2, restored.Len())

	_, ok := restored.Get(keys[0])
	assert.False(t, ok, "coldest entry should not survive a capped load")
	_, ok = restored.Get(keys[1])
	assert.True(t, ok)
	_, ok = restored.Get(keys[2])
	assert.True(t, ok)
}

func TestSaveFileLoadFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(src, []byte("package main\n"), 0644))

	key, err := NewKey(src, "main")
	require.NoError(t, err)

	c := New(4)
	c.Put(key, testGraph("main"))

	cachePath := filepath.Join(dir, "cache", "graphs.msgpack")
	require.NoError(t, c.SaveFile(cachePath))

	restored := New(4)
	require.NoError(t, restored.LoadFile(cachePath))
	assert.Equal(t, 1, restored.Len())
}

func TestLoadFileMissingIsNotAnError(t *testing.T) {
	c := New(4)
	err := c.LoadFile(filepath.Join(t.TempDir(), "nope.msgpack"))
	assert.NoError(t, err)
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	c := New(4)
	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))

	// Corrupt the stream entirely.
	bad := New(4)
	err := bad.Load(bytes.NewReader([]byte{0xff, 0x00, 0x01}))
	assert.Error(t, err)
}
