package platform

import "github.com/l3aro/go-guard-query/pkg/cfg"

// DefaultPredicateFunctions is the out-of-the-box set of function names
// treated as platform checks. Overridable through configuration.
var DefaultPredicateFunctions = []string{
	"isPlatform",
	"IsOSPlatform",
	"is_platform",
}

// Recognizer classifies normalized branch conditions into platform facts.
// Only three shapes produce anything but unknown: negation, conjunction,
// and a single-argument call to a known predicate function whose argument
// references a named constant. Disjunction inside an expression is never
// recognized; joins are handled across CFG paths by the domain's Or.
type Recognizer struct {
	predicates map[string]bool
}

// NewRecognizer builds a Recognizer accepting calls to the given function
// names. An empty list falls back to DefaultPredicateFunctions.
func NewRecognizer(predicateFunctions []string) *Recognizer {
	if len(predicateFunctions) == 0 {
		predicateFunctions = DefaultPredicateFunctions
	}
	set := make(map[string]bool, len(predicateFunctions))
	for _, name := range predicateFunctions {
		set[name] = true
	}
	return &Recognizer{predicates: set}
}

// Recognize converts a condition expression into a fact.
func (r *Recognizer) Recognize(cond *cfg.Expr) Fact {
	if cond == nil {
		return Unknown()
	}
	switch cond.Kind {
	case cfg.ExprNot:
		return Negate(r.Recognize(cond.X))
	case cfg.ExprAnd:
		return conjoin(r.Recognize(cond.X), r.Recognize(cond.Y))
	case cfg.ExprCall:
		if r.predicates[cond.Callee] && cond.Arg != "" {
			return Leaf(cond.Arg)
		}
	}
	return Unknown()
}
