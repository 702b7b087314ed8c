package cfg

// ExprKind classifies a normalized condition expression.
type ExprKind string

const (
	// ExprOpaque is any expression the normalizer does not model
	// (comparisons, disjunctions, literals, multi-argument calls).
	ExprOpaque ExprKind = "opaque"
	// ExprNot is a logical or bitwise negation of a single operand.
	ExprNot ExprKind = "not"
	// ExprAnd is a logical or bitwise conjunction of two operands.
	ExprAnd ExprKind = "and"
	// ExprCall is a call with exactly one argument. Arg holds the name of
	// the referenced constant when the argument is a plain name reference,
	// and is empty otherwise.
	ExprCall ExprKind = "call"
)

// Expr is a branch condition normalized into a small language-independent
// shape. Front-ends lower tree-sitter nodes into Exprs so the rest of the
// system never touches parser handles, and graphs stay serializable.
type Expr struct {
	Kind   ExprKind `msgpack:"kind" json:"kind"`
	Text   string   `msgpack:"text" json:"text"`
	Callee string   `msgpack:"callee,omitempty" json:"callee,omitempty"`
	Arg    string   `msgpack:"arg,omitempty" json:"arg,omitempty"`
	X      *Expr    `msgpack:"x,omitempty" json:"x,omitempty"`
	Y      *Expr    `msgpack:"y,omitempty" json:"y,omitempty"`
}

// Opaque wraps unmodeled source text.
func Opaque(text string) *Expr {
	return &Expr{Kind: ExprOpaque, Text: text}
}

// Not builds a negation node.
func Not(text string, x *Expr) *Expr {
	return &Expr{Kind: ExprNot, Text: text, X: x}
}

// And builds a conjunction node.
func And(text string, x, y *Expr) *Expr {
	return &Expr{Kind: ExprAnd, Text: text, X: x, Y: y}
}

// Call builds a single-argument call node. arg is the referenced constant
// name, or empty when the argument is not a plain name reference.
func Call(text, callee, arg string) *Expr {
	return &Expr{Kind: ExprCall, Text: text, Callee: callee, Arg: arg}
}
