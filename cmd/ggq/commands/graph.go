package commands

import (
	"fmt"
	"path/filepath"

	"github.com/l3aro/go-guard-query/internal/config"
	"github.com/l3aro/go-guard-query/internal/log"
	"github.com/l3aro/go-guard-query/pkg/cache"
	"github.com/l3aro/go-guard-query/pkg/cfg"
)

// cacheFileName is the snapshot file inside the configured cache directory.
const cacheFileName = "graphs.msgpack"

// loadConfig loads configuration and applies the verbose setting to the
// process logger.
func loadConfig() (*config.Config, error) {
	conf, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if conf.Verbose {
		log.Default().SetLevel(log.DebugLevel)
	}
	return conf, nil
}

// graphLoader builds CFGs through the persistent graph cache. An empty
// cache directory disables persistence.
type graphLoader struct {
	cache     *cache.GraphCache
	cachePath string
	dirty     bool
}

func newGraphLoader(conf *config.Config) *graphLoader {
	l := &graphLoader{cache: cache.New(conf.CacheMaxEntries)}
	if conf.CacheDir == "" {
		return l
	}
	l.cachePath = filepath.Join(conf.CacheDir, cacheFileName)
	if err := l.cache.LoadFile(l.cachePath); err != nil {
		log.Default().Warn("ignoring unreadable graph cache", "path", l.cachePath, "error", err)
	}
	return l
}

// load returns the CFG for a function, building it on a cache miss.
func (l *graphLoader) load(path, function string) (*cfg.Graph, error) {
	key, err := cache.NewKey(path, function)
	if err != nil {
		return nil, err
	}
	if g, ok := l.cache.Get(key); ok {
		log.Default().Debug("graph cache hit", "file", path, "function", function)
		return g, nil
	}

	g, err := cfg.Build(path, function)
	if err != nil {
		return nil, err
	}
	l.cache.Put(key, g)
	l.dirty = true
	return g, nil
}

// flush persists the cache if it changed. Failures are logged, not fatal.
func (l *graphLoader) flush() {
	if !l.dirty || l.cachePath == "" {
		return
	}
	if err := l.cache.SaveFile(l.cachePath); err != nil {
		log.Default().Warn("saving graph cache failed", "path", l.cachePath, "error", err)
	}
}
