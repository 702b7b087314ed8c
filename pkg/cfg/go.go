package cfg

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

type goExtractor struct {
	*builder
	content []byte
}

// BuildGo builds the CFG for a named function or method in Go source.
func BuildGo(path string, content []byte, functionName string) (*Graph, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree := parser.Parse(nil, content)
	defer tree.Close()

	funcNode := findGoFunction(tree.RootNode(), content, functionName)
	if funcNode == nil {
		return nil, fmt.Errorf("function %q not found in %s", functionName, path)
	}
	bodyNode := funcNode.ChildByFieldName("body")
	if bodyNode == nil {
		return nil, fmt.Errorf("function body not found for %s", functionName)
	}

	e := &goExtractor{
		builder: newBuilder(path, "go", functionName),
		content: content,
	}

	entry := e.newBlock(BlockEntry, startLine(funcNode))
	e.addMarker(entry, "entry", startLine(funcNode))

	last := e.processStmts(bodyNode, 0, entry)
	return e.seal(entry, last, endLine(funcNode)), nil
}

func findGoFunction(node *sitter.Node, content []byte, functionName string) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == "function_declaration" || node.Type() == "method_declaration" {
		name := node.ChildByFieldName("name")
		if name != nil && string(content[name.StartByte():name.EndByte()]) == functionName {
			return node
		}
		return nil
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if found := findGoFunction(node.NamedChild(i), content, functionName); found != nil {
			return found
		}
	}
	return nil
}

func (e *goExtractor) text(node *sitter.Node) string {
	return nodeText(e.content, node)
}

// processStmts walks the named children of a block-like node starting at
// from, threading the current block. It returns the block control flows out
// of, or nil when every path terminates before the end.
func (e *goExtractor) processStmts(node *sitter.Node, from int, cur *Block) *Block {
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

func (e *goExtractor) processStmt(node *sitter.Node, cur *Block) *Block {
	// Statements after a terminator land in a fresh unreachable block so
	// lookup by line still works.
	if cur == nil {
		cur = e.newBlock(BlockPlain, startLine(node))
		cur.Reachable = false
	}

	switch node.Type() {
	case "if_statement":
		return e.processIf(node, cur)
	case "for_statement":
		return e.processFor(node, cur)
	case "expression_switch_statement", "type_switch_statement", "select_statement":
		return e.processSwitch(node, cur)
	case "return_statement":
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
	case "goto_statement":
		// Labels are not resolved to blocks, so the jump target stays
		// unwired; the run still ends here and what follows is
		// unreachable by fallthrough.
		e.addOp(cur, e.text(node), startLine(node), endLine(node))
		return nil
	case "labeled_statement":
		label := node.ChildByFieldName("label")
		if label != nil {
			e.addOp(cur, e.text(label)+":", startLine(node), startLine(node))
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child != nil && child != label {
				cur = e.processStmt(child, cur)
			}
		}
		return cur
	default:
		e.addOp(cur, e.text(node), startLine(node), endLine(node))
		return cur
	}
}

func (e *goExtractor) processIf(node *sitter.Node, cur *Block) *Block {
	condNode := node.ChildByFieldName("condition")
	condText := e.text(condNode)
	if init := node.ChildByFieldName("initializer"); init != nil {
		condText = e.text(init) + "; " + condText
	}

	branch := e.newBlock(BlockBranch, startLine(node))
	e.addOp(branch, "if "+condText, startLine(node), startLine(condNode))
	e.branch(branch, normalizeGoExpr(e.content, condNode), CondWhenTrue)
	e.connect(cur, branch, false)

	consequence := node.ChildByFieldName("consequence")
	thenBlock := e.newBlock(BlockPlain, startLine(consequence))
	e.connect(branch, thenBlock, true)
	thenEnd := e.processStmts(consequence, 0, thenBlock)

	alternative := node.ChildByFieldName("alternative")
	if alternative == nil {
		join := e.newBlock(BlockPlain, endLine(node))
		e.connect(branch, join, false)
		if thenEnd != nil {
			e.connect(thenEnd, join, false)
		}
		return join
	}

	elseBlock := e.newBlock(BlockPlain, startLine(alternative))
	e.connect(branch, elseBlock, false)

	var elseEnd *Block
	if alternative.Type() == "if_statement" {
		elseEnd = e.processIf(alternative, elseBlock)
	} else {
		elseEnd = e.processStmts(alternative, 0, elseBlock)
	}

	if thenEnd == nil && elseEnd == nil {
		return nil
	}
	join := e.newBlock(BlockPlain, endLine(node))
	if thenEnd != nil {
		e.connect(thenEnd, join, false)
	}
	if elseEnd != nil {
		e.connect(elseEnd, join, false)
	}
	return join
}

func (e *goExtractor) processFor(node *sitter.Node, cur *Block) *Block {
	// for_statement itself only fields its body. Three-clause loops keep
	// the condition inside their for_clause child, and the while-style
	// form (for cond { }) is a bare expression child with no field name.
	var condNode *sitter.Node
	isRange := false
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "for_clause":
			condNode = child.ChildByFieldName("condition")
		case "range_clause":
			isRange = true
		case "block", "comment":
		default:
			condNode = child
		}
	}

	header := e.newBlock(BlockLoop, startLine(node))
	switch {
	case isRange:
		e.addOp(header, "for range", startLine(node), startLine(node))
	case condNode != nil:
		e.addOp(header, "for "+e.text(condNode), startLine(node), startLine(node))
		e.branch(header, normalizeGoExpr(e.content, condNode), CondWhenTrue)
	default:
		e.addOp(header, "for {}", startLine(node), startLine(node))
	}
	e.connect(cur, header, false)

	body := node.ChildByFieldName("body")
	bodyBlock := e.newBlock(BlockPlain, startLine(body))
	e.connect(header, bodyBlock, true)

	after := e.newBlock(BlockPlain, endLine(node))
	if condNode != nil || isRange {
		e.connect(header, after, false)
	}

	e.pushLoop(header, after)
	bodyEnd := e.processStmts(body, 0, bodyBlock)
	e.popLoop()

	if bodyEnd != nil {
		e.connect(bodyEnd, header, false) // back edge
	}
	if len(after.Preds) == 0 {
		after.Reachable = false
	}
	return after
}

// processSwitch lowers switch and select statements into a chain of case
// test blocks. Case conditions stay opaque: matching a case arm is never a
// recognizable platform fact, so the chain only needs the right shape.
func (e *goExtractor) processSwitch(node *sitter.Node, cur *Block) *Block {
	header := e.newBlock(BlockPlain, startLine(node))
	head := e.text(node)
	if i := strings.IndexByte(head, '{'); i > 0 {
		head = head[:i]
	}
	e.addOp(header, strings.TrimSpace(head), startLine(node), startLine(node))
	e.connect(cur, header, false)

	after := e.newBlock(BlockPlain, endLine(node))
	e.pushBreak(after)
	defer e.popBreak()

	prev := header
	var defaultCase *sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "expression_case", "type_case", "communication_case":
			test := e.newBlock(BlockBranch, startLine(child))
			label := e.text(child)
			if j := strings.IndexByte(label, ':'); j > 0 {
				label = label[:j]
			}
			e.addOp(test, strings.TrimSpace(label), startLine(child), startLine(child))
			e.branch(test, Opaque(strings.TrimSpace(label)), CondWhenTrue)
			e.connect(prev, test, false)

			caseBody := e.newBlock(BlockPlain, startLine(child))
			e.connect(test, caseBody, true)
			if bodyEnd := e.processStmts(child, 1, caseBody); bodyEnd != nil {
				e.connect(bodyEnd, after, false)
			}
			prev = test
		case "default_case":
			defaultCase = child
		}
	}

	if defaultCase != nil {
		caseBody := e.newBlock(BlockPlain, startLine(defaultCase))
		e.connect(prev, caseBody, false)
		if bodyEnd := e.processStmts(defaultCase, 0, caseBody); bodyEnd != nil {
			e.connect(bodyEnd, after, false)
		}
	} else {
		e.connect(prev, after, false)
	}

	if len(after.Preds) == 0 {
		after.Reachable = false
		return nil
	}
	return after
}

// normalizeGoExpr lowers a Go condition into the normalized Expr shape.
// Only negation, conjunction, and single-argument calls with a plain name
// argument are modeled; everything else is opaque.
func normalizeGoExpr(content []byte, node *sitter.Node) *Expr {
	if node == nil {
		return nil
	}
	text := nodeText(content, node)

	switch node.Type() {
	case "parenthesized_expression":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if inner := node.NamedChild(i); inner != nil && inner.Type() != "comment" {
				return normalizeGoExpr(content, inner)
			}
		}
		return Opaque(text)

	case "unary_expression":
		op := nodeText(content, node.ChildByFieldName("operator"))
		if op == "!" || op == "^" {
			return Not(text, normalizeGoExpr(content, node.ChildByFieldName("operand")))
		}
		return Opaque(text)

	case "binary_expression":
		op := nodeText(content, node.ChildByFieldName("operator"))
		if op == "&&" || op == "&" {
			return And(text,
				normalizeGoExpr(content, node.ChildByFieldName("left")),
				normalizeGoExpr(content, node.ChildByFieldName("right")))
		}
		return Opaque(text)

	case "call_expression":
		fn := node.ChildByFieldName("function")
		args := node.ChildByFieldName("arguments")
		if fn == nil || args == nil || args.NamedChildCount() != 1 {
			return Opaque(text)
		}
		callee := lastName(nodeText(content, fn))
		arg := args.NamedChild(0)
		argName := ""
		if arg != nil && (arg.Type() == "identifier" || arg.Type() == "selector_expression") {
			argName = lastName(nodeText(content, arg))
		}
		return Call(text, callee, argName)
	}
	return Opaque(text)
}
