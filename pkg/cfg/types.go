// Package cfg builds and represents per-function Control Flow Graphs (CFGs).
// Blocks carry the operations they execute plus branch metadata: an optional
// normalized condition expression, a condition kind describing which successor
// the condition selects, and at most one conditional and one fallthrough
// successor edge.
package cfg

// BlockKind classifies a CFG block.
type BlockKind string

const (
	BlockEntry  BlockKind = "entry"       // Function entry point
	BlockBranch BlockKind = "branch"      // Conditional branch (if/elif/case)
	BlockLoop   BlockKind = "loop_header" // Loop header (for/while)
	BlockReturn BlockKind = "return"      // Return statement
	BlockExit   BlockKind = "exit"        // Function exit point
	BlockPlain  BlockKind = "plain"       // Regular statement run
)

// CondKind describes how a block's branch condition selects its successors.
type CondKind string

const (
	// CondNone marks a block without a branch condition.
	CondNone CondKind = "none"
	// CondWhenTrue means the conditional-successor edge is taken when the
	// condition evaluates to true, the fallthrough edge when it is false.
	CondWhenTrue CondKind = "when_true"
	// CondWhenFalse is the inverse polarity.
	CondWhenFalse CondKind = "when_false"
)

// Operation is a single statement-level operation inside a block. Text plus
// the line range forms its syntactic identity for call-site lookup.
// Synthetic marks builder-generated markers (entry, exit) that carry no
// source statement and are never lookup candidates.
type Operation struct {
	Text      string `msgpack:"text" json:"text"`
	StartLine int    `msgpack:"start_line" json:"start_line"`
	EndLine   int    `msgpack:"end_line" json:"end_line"`
	Synthetic bool   `msgpack:"synthetic,omitempty" json:"synthetic,omitempty"`
}

// Edge is a directed edge between two blocks, identified by block IDs.
// Conditional marks the source block's conditional-successor edge.
type Edge struct {
	Source      int  `msgpack:"source" json:"source"`
	Dest        int  `msgpack:"dest" json:"dest"`
	Conditional bool `msgpack:"conditional" json:"conditional"`
}

// Block is a basic block: an ordered operation run with its predecessor
// edges and at most two successor edges. Blocks are immutable once the
// graph is built.
type Block struct {
	ID         int         `msgpack:"id" json:"id"`
	Kind       BlockKind   `msgpack:"kind" json:"kind"`
	StartLine  int         `msgpack:"start_line" json:"start_line"`
	EndLine    int         `msgpack:"end_line" json:"end_line"`
	Operations []Operation `msgpack:"operations" json:"operations"`
	Preds      []Edge      `msgpack:"preds" json:"preds"`
	CondSucc   *Edge       `msgpack:"cond_succ,omitempty" json:"cond_succ,omitempty"`
	FallSucc   *Edge       `msgpack:"fall_succ,omitempty" json:"fall_succ,omitempty"`
	Cond       *Expr       `msgpack:"cond,omitempty" json:"cond,omitempty"`
	CondKind   CondKind    `msgpack:"cond_kind" json:"cond_kind"`
	Reachable  bool        `msgpack:"reachable" json:"reachable"`
}

// Graph is the complete CFG for one function. Blocks are ordered by ID and
// reference each other through IDs only, so a Graph is fully serializable
// and holds no parser state.
type Graph struct {
	FunctionName string   `msgpack:"function_name" json:"function_name"`
	Path         string   `msgpack:"path" json:"path"`
	Language     string   `msgpack:"language" json:"language"`
	Blocks       []*Block `msgpack:"blocks" json:"blocks"`
	EntryID      int      `msgpack:"entry_id" json:"entry_id"`
	ExitID       int      `msgpack:"exit_id" json:"exit_id"`
}

// Block returns the block with the given ID, or nil if out of range.
func (g *Graph) Block(id int) *Block {
	if id < 0 || id >= len(g.Blocks) {
		return nil
	}
	return g.Blocks[id]
}

// Entry returns the function entry block.
func (g *Graph) Entry() *Block { return g.Block(g.EntryID) }

// Exit returns the function exit block.
func (g *Graph) Exit() *Block { return g.Block(g.ExitID) }

// EdgePolarity reports whether the given predecessor edge is negated with
// respect to its source block's branch condition: the conditional-successor
// edge is negated when the kind is when-false, the fallthrough edge when the
// kind is when-true. ok is false for edges that carry no branch polarity
// (unconditional control transfer).
func EdgePolarity(source *Block, e Edge) (negated, ok bool) {
	if source == nil {
		return false, false
	}
	switch {
	case source.CondSucc != nil && *source.CondSucc == e:
		return source.CondKind == CondWhenFalse, true
	case source.FallSucc != nil && *source.FallSucc == e:
		return source.CondKind == CondWhenTrue, true
	}
	return false, false
}
