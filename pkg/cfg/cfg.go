package cfg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Build reads a source file, detects its language from the extension, and
// builds the CFG for the named function.
func Build(path, functionName string) (*Graph, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return BuildGo(path, content, functionName)
	case ".py":
		return BuildPython(path, content, functionName)
	default:
		return nil, fmt.Errorf("unsupported file type: %s (only .go and .py files supported)", path)
	}
}

// nodeText returns the source text covered by a node.
func nodeText(content []byte, node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(content[node.StartByte():node.EndByte()])
}

func startLine(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

func endLine(node *sitter.Node) int {
	return int(node.EndPoint().Row) + 1
}

// lastName reduces a possibly dotted or selector-qualified reference to its
// final name component ("platform.Windows" -> "Windows").
func lastName(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.LastIndexByte(text, '.'); i >= 0 {
		text = text[i+1:]
	}
	return text
}
