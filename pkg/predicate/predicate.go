// Package predicate implements a generic backward predicate-propagation
// pass over control flow graphs. Starting from a target block it walks
// predecessor edges, converting branch conditions into facts of a
// pluggable domain and combining them with the domain's And along a path
// and Or across paths. The pass performs no domain-specific reasoning;
// instantiate it with a Domain to get a concrete analysis.
package predicate

import "github.com/l3aro/go-guard-query/pkg/cfg"

// Domain is the fact lattice a pass instance operates over.
//
// Empty is the identity of And and the result for blocks no constrained
// path leads to. Leaf converts one branch condition into a fact, honoring
// the edge polarity. And conjoins facts along a single path; Or merges
// facts where paths join.
type Domain[F any] interface {
	Empty() F
	Leaf(negated bool, cond *cfg.Expr) F
	And(a, b F) F
	Or(a, b F) F
}

// frame is one block under evaluation on the explicit traversal stack.
type frame[F any] struct {
	block *cfg.Block
	next  int // index of the next predecessor edge to consider

	acc    F
	accSet bool

	// Polarity of the predecessor edge whose source is currently being
	// evaluated by the frame above this one.
	pendingCond    *cfg.Expr
	pendingNegated bool
}

// Analyze computes the fact guaranteed to hold whenever control reaches
// target. The traversal is an explicit stack rather than native recursion,
// so depth is bounded by the block count and never by the call stack.
//
// Each block is visited at most once per query: a predecessor whose source
// is already visited is a back edge (or a shared ancestor) and its
// contribution is dropped outright rather than merged. That approximation
// guarantees termination on cyclic graphs at the cost of loop-carried
// facts. A fresh visited set is allocated per call, so concurrent queries
// against the same read-only graph are safe.
func Analyze[F any](g *cfg.Graph, target *cfg.Block, dom Domain[F]) F {
	if g == nil || target == nil {
		return dom.Empty()
	}

	visited := make(map[int]bool, len(g.Blocks))
	visited[target.ID] = true
	stack := []*frame[F]{{block: target}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]

		descended := false
		for f.next < len(f.block.Preds) {
			e := f.block.Preds[f.next]
			f.next++

			src := g.Block(e.Source)
			if src == nil || visited[src.ID] {
				continue
			}
			visited[src.ID] = true

			f.pendingCond = nil
			f.pendingNegated = false
			if src.Cond != nil {
				if negated, ok := cfg.EdgePolarity(src, e); ok {
					f.pendingCond = src.Cond
					f.pendingNegated = negated
				}
			}
			stack = append(stack, &frame[F]{block: src})
			descended = true
			break
		}
		if descended {
			continue
		}

		// No qualifying predecessor left: the frame's value is final.
		res := f.acc
		if !f.accSet {
			res = dom.Empty()
		}
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			return res
		}

		parent := stack[len(stack)-1]
		edgeFact := res
		if parent.pendingCond != nil {
			edgeFact = dom.And(edgeFact, dom.Leaf(parent.pendingNegated, parent.pendingCond))
		}
		if !parent.accSet {
			parent.acc = edgeFact
			parent.accSet = true
		} else {
			parent.acc = dom.Or(parent.acc, edgeFact)
		}
	}

	return dom.Empty()
}
