// Package scanner walks a project tree looking for analyzable source
// files. It respects .ggqignore files with gitignore-style patterns and
// detects languages by extension.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileInfo describes one discovered source file.
type FileInfo struct {
	Path     string // Relative path from root
	FullPath string // Absolute path
	Language string // Detected language
	Size     int64  // File size in bytes
}

// Options configures the scanner.
type Options struct {
	SkipHidden      bool     // Skip entries starting with a dot
	DefaultExcludes []string // Directory names always skipped
	IgnoreFileName  string   // Ignore file name (default .ggqignore)
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SkipHidden:     true,
		IgnoreFileName: ".ggqignore",
		DefaultExcludes: []string{
			"node_modules",
			".git",
			"__pycache__",
			".venv",
			"venv",
			"dist",
			"build",
			"vendor",
			"testdata",
			"bin",
		},
	}
}

// Scanner walks directories for supported source files.
type Scanner struct {
	opts Options
}

// New creates a Scanner with the given options.
func New(opts Options) *Scanner {
	if opts.IgnoreFileName == "" {
		opts.IgnoreFileName = ".ggqignore"
	}
	return &Scanner{opts: opts}
}

// Scan walks root recursively and returns every supported source file
// that survives the ignore rules.
func (s *Scanner) Scan(root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", root, err)
	}

	patterns, err := loadIgnoreFile(filepath.Join(absRoot, s.opts.IgnoreFileName))
	if err != nil {
		return nil, fmt.Errorf("loading ignore patterns: %w", err)
	}

	var files []FileInfo
	walkErr := filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		relPath, err := filepath.Rel(absRoot, path)
		if err != nil || relPath == "." {
			return nil
		}
		relSlash := filepath.ToSlash(relPath)

		if s.opts.SkipHidden && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if s.isDefaultExcluded(info.Name()) || matches(patterns, relSlash, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if matches(patterns, relSlash, false) {
			return nil
		}

		language := DetectLanguage(filepath.Ext(path))
		if language == "" {
			return nil
		}

		files = append(files, FileInfo{
			Path:     relSlash,
			FullPath: path,
			Language: language,
			Size:     info.Size(),
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking %s: %w", absRoot, walkErr)
	}
	return files, nil
}

func (s *Scanner) isDefaultExcluded(name string) bool {
	for _, exclude := range s.opts.DefaultExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	return false
}
