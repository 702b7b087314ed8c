package cfg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
)

// FunctionInfo identifies one function or method definition in a file.
type FunctionInfo struct {
	Name      string `json:"name"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// ListFunctions parses a source file and returns every named function or
// method it defines, in source order.
func ListFunctions(path string) ([]FunctionInfo, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	var lang *sitter.Language
	var defTypes []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		lang = golang.GetLanguage()
		defTypes = []string{"function_declaration", "method_declaration"}
	case ".py":
		lang = python.GetLanguage()
		defTypes = []string{"function_definition"}
	default:
		return nil, fmt.Errorf("unsupported file type: %s (only .go and .py files supported)", path)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree := parser.Parse(nil, content)
	defer tree.Close()

	var funcs []FunctionInfo
	collectFunctions(tree.RootNode(), content, defTypes, &funcs)
	return funcs, nil
}

func collectFunctions(node *sitter.Node, content []byte, defTypes []string, out *[]FunctionInfo) {
	if node == nil {
		return
	}
	for _, t := range defTypes {
		if node.Type() != t {
			continue
		}
		if name := node.ChildByFieldName("name"); name != nil {
			*out = append(*out, FunctionInfo{
				Name:      nodeText(content, name),
				StartLine: startLine(node),
				EndLine:   endLine(node),
			})
		}
		break
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		collectFunctions(node.NamedChild(i), content, defTypes, out)
	}
}
