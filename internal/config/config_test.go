package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, []string{"isPlatform", "IsOSPlatform", "is_platform"}, cfg.PredicateFunctions)
	assert.Equal(t, 256, cfg.CacheMaxEntries)
	assert.False(t, cfg.Verbose)
	assert.NotEmpty(t, cfg.CacheDir)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *Config
		wantErr     bool
		errContains string
	}{
		{
			name:    "defaults are valid",
			cfg:     DefaultConfig(),
			wantErr: false,
		},
		{
			name:        "empty predicate list",
			cfg:         &Config{PredicateFunctions: nil},
			wantErr:     true,
			errContains: "must not be empty",
		},
		{
			name:        "blank predicate name",
			cfg:         &Config{PredicateFunctions: []string{"isPlatform", "  "}},
			wantErr:     true,
			errContains: "blank",
		},
		{
			name:        "negative cache size",
			cfg:         &Config{PredicateFunctions: []string{"isPlatform"}, CacheMaxEntries: -1},
			wantErr:     true,
			errContains: "cache_max_entries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.PredicateFunctions = []string{"runningOn"}
	cfg.CacheMaxEntries = 8
	cfg.Verbose = true
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"runningOn"}, loaded.PredicateFunctions)
	assert.Equal(t, 8, loaded.CacheMaxEntries)
	assert.True(t, loaded.Verbose)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GGQ_PREDICATE_FUNCTIONS", "checkOS, onPlatform")
	t.Setenv("GGQ_CACHE_MAX_ENTRIES", "4")
	t.Setenv("GGQ_VERBOSE", "true")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if !reflect.DeepEqual(cfg.PredicateFunctions, []string{"checkOS", "onPlatform"}) {
		t.Errorf("PredicateFunctions = %v, want [checkOS onPlatform]", cfg.PredicateFunctions)
	}
	assert.Equal(t, 4, cfg.CacheMaxEntries)
	assert.True(t, cfg.Verbose)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errUnwrapAll(err)))
}

func errUnwrapAll(err error) error {
	for {
		unwrapped, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		err = unwrapped.Unwrap()
	}
}
