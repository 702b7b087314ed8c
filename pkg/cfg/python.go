package cfg

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

type pyExtractor struct {
	*builder
	content []byte
}

// BuildPython builds the CFG for a named function or method in Python source.
func BuildPython(path string, content []byte, functionName string) (*Graph, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	tree := parser.Parse(nil, content)
	defer tree.Close()

	funcNode := findPyFunction(tree.RootNode(), content, functionName)
	if funcNode == nil {
		return nil, fmt.Errorf("function %q not found in %s", functionName, path)
	}
	bodyNode := funcNode.ChildByFieldName("body")
	if bodyNode == nil {
		return nil, fmt.Errorf("function body not found for %s", functionName)
	}

	e := &pyExtractor{
		builder: newBuilder(path, "python", functionName),
		content: content,
	}

	entry := e.newBlock(BlockEntry, startLine(funcNode))
	e.addMarker(entry, "entry", startLine(funcNode))

	last := e.processStmts(bodyNode, 0, entry)
	return e.seal(entry, last, endLine(funcNode)), nil
}

func findPyFunction(node *sitter.Node, content []byte, functionName string) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == "function_definition" {
		name := node.ChildByFieldName("name")
		if name != nil && string(content[name.StartByte():name.EndByte()]) == functionName {
			return node
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if found := findPyFunction(node.NamedChild(i), content, functionName); found != nil {
			return found
		}
	}
	return nil
}

func (e *pyExtractor) text(node *sitter.Node) string {
	return nodeText(e.content, node)
}

func (e *pyExtractor) processStmts(node *sitter.Node, from int, cur *Block) *Block {
	if node == nil {
		return cur
	}
	for i := from; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		cur = e.processStmt(child, cur)
	}
	return cur
}

func (e *pyExtractor) processStmt(node *sitter.Node, cur *Block) *Block {
	if cur == nil {
		cur = e.newBlock(BlockPlain, startLine(node))
		cur.Reachable = false
	}

	switch node.Type() {
	case "if_statement":
		return e.processIf(node, cur)
	case "while_statement":
		return e.processWhile(node, cur)
	case "for_statement":
		return e.processFor(node, cur)
	case "return_statement":
		ret := e.newBlock(BlockReturn, startLine(node))
		e.addOp(ret, e.text(node), startLine(node), endLine(node))
		e.connect(cur, ret, false)
		e.terminate(ret)
		return nil
	case "raise_statement":
		ret := e.newBlock(BlockReturn, startLine(node))
		e.addOp(ret, e.text(node), startLine(node), endLine(node))
		e.connect(cur, ret, false)
		e.terminate(ret)
		return nil
	case "break_statement":
		e.addOp(cur, e.text(node), startLine(node), endLine(node))
		if target, ok := e.currentBreak(); ok {
			e.connect(cur, target, false)
		}
		return nil
	case "continue_statement":
		e.addOp(cur, e.text(node), startLine(node), endLine(node))
		if loop, ok := e.currentLoop(); ok {
			e.connect(cur, loop.header, false)
		}
		return nil
	default:
		e.addOp(cur, e.text(node), startLine(node), endLine(node))
		return cur
	}
}

// processIf lowers an if statement and its elif/else clause chain.
func (e *pyExtractor) processIf(node *sitter.Node, cur *Block) *Block {
	type arm struct {
		cond        *sitter.Node // nil for the else clause
		consequence *sitter.Node
		line        int
	}

	arms := []arm{{
		cond:        node.ChildByFieldName("condition"),
		consequence: node.ChildByFieldName("consequence"),
		line:        startLine(node),
	}}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "elif_clause":
			arms = append(arms, arm{
				cond:        child.ChildByFieldName("condition"),
				consequence: child.ChildByFieldName("consequence"),
				line:        startLine(child),
			})
		case "else_clause":
			arms = append(arms, arm{
				consequence: child.ChildByFieldName("body"),
				line:        startLine(child),
			})
		}
	}

	var ends []*Block
	hasElse := false
	prev := cur
	for _, a := range arms {
		if a.cond == nil {
			hasElse = true
			elseBlock := e.newBlock(BlockPlain, a.line)
			e.connect(prev, elseBlock, false)
			if end := e.processStmts(a.consequence, 0, elseBlock); end != nil {
				ends = append(ends, end)
			}
			prev = nil
			break
		}

		branch := e.newBlock(BlockBranch, a.line)
		e.addOp(branch, "if "+e.text(a.cond), a.line, a.line)
		e.branch(branch, normalizePyExpr(e.content, a.cond), CondWhenTrue)
		e.connect(prev, branch, false)

		thenBlock := e.newBlock(BlockPlain, startLine(a.consequence))
		e.connect(branch, thenBlock, true)
		if end := e.processStmts(a.consequence, 0, thenBlock); end != nil {
			ends = append(ends, end)
		}
		prev = branch
	}

	if !hasElse && prev == nil {
		return nil
	}
	if hasElse && len(ends) == 0 {
		return nil
	}
	join := e.newBlock(BlockPlain, endLine(node))
	if !hasElse && prev != nil {
		e.connect(prev, join, false)
	}
	for _, end := range ends {
		e.connect(end, join, false)
	}
	return join
}

func (e *pyExtractor) processWhile(node *sitter.Node, cur *Block) *Block {
	condNode := node.ChildByFieldName("condition")

	header := e.newBlock(BlockLoop, startLine(node))
	e.addOp(header, "while "+e.text(condNode), startLine(node), startLine(node))
	e.branch(header, normalizePyExpr(e.content, condNode), CondWhenTrue)
	e.connect(cur, header, false)

	body := node.ChildByFieldName("body")
	bodyBlock := e.newBlock(BlockPlain, startLine(body))
	e.connect(header, bodyBlock, true)

	after := e.newBlock(BlockPlain, endLine(node))
	e.connect(header, after, false)

	e.pushLoop(header, after)
	bodyEnd := e.processStmts(body, 0, bodyBlock)
	e.popLoop()

	if bodyEnd != nil {
		e.connect(bodyEnd, header, false) // back edge
	}
	return after
}

func (e *pyExtractor) processFor(node *sitter.Node, cur *Block) *Block {
	header := e.newBlock(BlockLoop, startLine(node))
	e.addOp(header, "for "+e.text(node.ChildByFieldName("left"))+" in "+e.text(node.ChildByFieldName("right")),
		startLine(node), startLine(node))
	e.connect(cur, header, false)

	body := node.ChildByFieldName("body")
	bodyBlock := e.newBlock(BlockPlain, startLine(body))
	e.connect(header, bodyBlock, true)

	after := e.newBlock(BlockPlain, endLine(node))
	e.connect(header, after, false)

	e.pushLoop(header, after)
	bodyEnd := e.processStmts(body, 0, bodyBlock)
	e.popLoop()

	if bodyEnd != nil {
		e.connect(bodyEnd, header, false) // back edge
	}
	return after
}

// normalizePyExpr lowers a Python condition into the normalized Expr shape.
func normalizePyExpr(content []byte, node *sitter.Node) *Expr {
	if node == nil {
		return nil
	}
	text := nodeText(content, node)

	switch node.Type() {
	case "parenthesized_expression":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if inner := node.NamedChild(i); inner != nil && inner.Type() != "comment" {
				return normalizePyExpr(content, inner)
			}
		}
		return Opaque(text)

	case "not_operator":
		return Not(text, normalizePyExpr(content, node.ChildByFieldName("argument")))

	case "boolean_operator":
		op := nodeText(content, node.ChildByFieldName("operator"))
		if op == "and" {
			return And(text,
				normalizePyExpr(content, node.ChildByFieldName("left")),
				normalizePyExpr(content, node.ChildByFieldName("right")))
		}
		return Opaque(text)

	case "binary_operator":
		op := nodeText(content, node.ChildByFieldName("operator"))
		if op == "&" {
			return And(text,
				normalizePyExpr(content, node.ChildByFieldName("left")),
				normalizePyExpr(content, node.ChildByFieldName("right")))
		}
		return Opaque(text)

	case "call":
		fn := node.ChildByFieldName("function")
		args := node.ChildByFieldName("arguments")
		if fn == nil || args == nil || args.NamedChildCount() != 1 {
			return Opaque(text)
		}
		callee := lastName(nodeText(content, fn))
		arg := args.NamedChild(0)
		argName := ""
		if arg != nil && (arg.Type() == "identifier" || arg.Type() == "attribute") {
			argName = lastName(nodeText(content, arg))
		}
		return Call(text, callee, argName)
	}
	return Opaque(text)
}
