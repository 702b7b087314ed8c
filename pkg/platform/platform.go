// Package platform instantiates the predicate pass for platform-identity
// facts: "the named platform check held (or did not hold) on every path
// reaching this point." The lattice is deliberately narrow (a single,
// possibly negated, named check or unknown) and trades precision for
// simplicity wherever facts disagree.
package platform

import (
	"fmt"

	"github.com/l3aro/go-guard-query/pkg/cfg"
	"github.com/l3aro/go-guard-query/pkg/predicate"
)

// FactKind discriminates the three lattice values.
type FactKind string

const (
	// KindEmpty is "no known condition": true on every path by default.
	KindEmpty FactKind = "empty"
	// KindUnknown is "no claim possible": conditions were unrecognized,
	// conflicting, or path-joined without agreement.
	KindUnknown FactKind = "unknown"
	// KindLeaf is a single named platform check, possibly negated.
	KindLeaf FactKind = "leaf"
)

// Fact is one value of the platform lattice. For a leaf, Name is the
// platform identifier and is never empty.
type Fact struct {
	Kind    FactKind `json:"kind"`
	Name    string   `json:"name,omitempty"`
	Negated bool     `json:"negated,omitempty"`
}

// Empty is the no-constraint fact.
func Empty() Fact { return Fact{Kind: KindEmpty} }

// Unknown is the no-claim fact.
func Unknown() Fact { return Fact{Kind: KindUnknown} }

// Leaf is the fact that the named check held, not negated.
func Leaf(name string) Fact { return Fact{Kind: KindLeaf, Name: name} }

// IsGuarantee reports whether the fact pins down a concrete guard. Empty
// and unknown both mean no guarantee; they stay distinguishable for
// diagnostics only.
func (f Fact) IsGuarantee() bool { return f.Kind == KindLeaf }

func (f Fact) String() string {
	switch f.Kind {
	case KindEmpty:
		return "<empty>"
	case KindLeaf:
		if f.Negated {
			return "!" + f.Name
		}
		return f.Name
	default:
		return "<unknown>"
	}
}

// Negate flips a leaf's polarity. Empty and unknown are fixed points.
func Negate(f Fact) Fact {
	if f.Kind == KindLeaf {
		f.Negated = !f.Negated
	}
	return f
}

// conjoin implements And: empty is the identity, identical leaves
// collapse, and any other combination is unknown. The domain has no
// representation for a conjunction of two different platform facts, so
// that case degrades to unknown.
func conjoin(a, b Fact) Fact {
	switch {
	case a.Kind == KindEmpty:
		return b
	case b.Kind == KindEmpty:
		return a
	case a.Kind == KindLeaf && b.Kind == KindLeaf && a == b:
		return a
	}
	return Unknown()
}

// Domain adapts the platform lattice to the generic predicate pass. The
// zero value is not usable; construct it with NewDomain.
type Domain struct {
	recognizer *Recognizer
}

var _ predicate.Domain[Fact] = Domain{}

// NewDomain builds a Domain that recognizes leaf conditions with r.
func NewDomain(r *Recognizer) Domain {
	return Domain{recognizer: r}
}

// Empty implements predicate.Domain.
func (Domain) Empty() Fact { return Empty() }

// Leaf recognizes the branch condition and applies the edge polarity.
func (d Domain) Leaf(negated bool, cond *cfg.Expr) Fact {
	f := d.recognizer.Recognize(cond)
	if negated {
		f = Negate(f)
	}
	return f
}

// And implements predicate.Domain.
func (Domain) And(a, b Fact) Fact { return conjoin(a, b) }

// Or implements predicate.Domain. It returns unknown unconditionally:
// when a block is reachable over more than one path the domain refuses to
// assert a guarantee, even when both candidate facts agree.
func (Domain) Or(a, b Fact) Fact { return Unknown() }

// Analyze runs the predicate pass over g for the given target block and
// returns the platform fact guaranteed at its entry.
func Analyze(g *cfg.Graph, target *cfg.Block, r *Recognizer) Fact {
	return predicate.Analyze[Fact](g, target, NewDomain(r))
}

// Describe renders a fact for human-readable diagnostics.
func Describe(f Fact) string {
	switch f.Kind {
	case KindLeaf:
		if f.Negated {
			return fmt.Sprintf("guaranteed NOT on platform %s", f.Name)
		}
		return fmt.Sprintf("guaranteed on platform %s", f.Name)
	case KindEmpty:
		return "no guarantee (no platform constraint on any path)"
	default:
		return "no guarantee (conditions unrecognized or paths disagree)"
	}
}
