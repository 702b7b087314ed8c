package scanner

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// ignorePattern is one gitignore-style line: an optional leading "!" for
// negation, an optional trailing "/" restricting the pattern to
// directories, and glob syntax in the final segment.
type ignorePattern struct {
	pattern  string
	negation bool
	dirOnly  bool
	anchored bool
}

func parsePattern(line string) (ignorePattern, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ignorePattern{}, false
	}
	p := ignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.negation = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.anchored = true
		line = line[1:]
	}
	p.pattern = line
	return p, line != ""
}

// match reports whether the relative slash-separated path matches the
// pattern. Unanchored patterns match at any depth.
func (p ignorePattern) match(relPath string, isDir bool) bool {
	if p.dirOnly && !isDir {
		// A directory pattern still hides the files below it.
		if !strings.Contains(relPath, "/") {
			return false
		}
	}

	candidates := []string{relPath}
	if !p.anchored {
		segments := strings.Split(relPath, "/")
		for i := 1; i < len(segments); i++ {
			candidates = append(candidates, strings.Join(segments[i:], "/"))
		}
	}

	for _, candidate := range candidates {
		if ok, err := filepath.Match(p.pattern, candidate); err == nil && ok {
			return true
		}
		// Directory patterns cover everything underneath.
		if strings.HasPrefix(candidate, p.pattern+"/") {
			return true
		}
		// Match against the base name for bare patterns.
		if !strings.Contains(p.pattern, "/") {
			if ok, err := filepath.Match(p.pattern, filepath.Base(candidate)); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// loadIgnoreFile parses an ignore file; a missing file yields no patterns.
func loadIgnoreFile(path string) ([]ignorePattern, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var patterns []ignorePattern
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		if p, ok := parsePattern(sc.Text()); ok {
			patterns = append(patterns, p)
		}
	}
	return patterns, sc.Err()
}

// matches applies the pattern list in order; a later negation overrides an
// earlier match, like gitignore.
func matches(patterns []ignorePattern, relPath string, isDir bool) bool {
	ignored := false
	for _, p := range patterns {
		if p.match(relPath, isDir) {
			ignored = !p.negation
		}
	}
	return ignored
}
