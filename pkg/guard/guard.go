// Package guard locates a target operation inside a function's CFG and
// runs the platform predicate analysis for the block containing it.
package guard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/l3aro/go-guard-query/pkg/cfg"
	"github.com/l3aro/go-guard-query/pkg/platform"
)

// ErrTargetNotFound is returned when no block operation matches the target.
var ErrTargetNotFound = errors.New("target operation not found")

// ErrAmbiguousTarget is returned when more than one operation matches the
// target. The driver never silently picks the first match; callers must
// narrow the target (or select interactively) and retry.
var ErrAmbiguousTarget = errors.New("target operation is ambiguous")

// Target identifies the operation to analyze: a source line, optionally
// narrowed by a text fragment the operation must contain.
type Target struct {
	Line  int
	Match string
}

func (t Target) String() string {
	if t.Match == "" {
		return fmt.Sprintf("line %d", t.Line)
	}
	return fmt.Sprintf("line %d (matching %q)", t.Line, t.Match)
}

// Site is one matching operation and the block holding it.
type Site struct {
	BlockID   int
	Operation cfg.Operation
}

// AmbiguousError carries every candidate site so a caller can present a
// choice instead of guessing.
type AmbiguousError struct {
	Target     Target
	Candidates []Site
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%v: %s has %d matching operations", ErrAmbiguousTarget, e.Target, len(e.Candidates))
}

// Is makes errors.Is(err, ErrAmbiguousTarget) hold.
func (e *AmbiguousError) Is(target error) bool { return target == ErrAmbiguousTarget }

// Locate scans every block's operation list for the target. Exactly one
// match is required: zero matches and multiple matches are both caller
// errors, surfaced with enough context to diagnose.
func Locate(g *cfg.Graph, t Target) (*cfg.Block, error) {
	var sites []Site
	for _, blk := range g.Blocks {
		for _, op := range blk.Operations {
			if op.Synthetic {
				continue
			}
			if t.Line < op.StartLine || t.Line > op.EndLine {
				continue
			}
			if t.Match != "" && !strings.Contains(op.Text, t.Match) {
				continue
			}
			sites = append(sites, Site{BlockID: blk.ID, Operation: op})
		}
	}

	switch len(sites) {
	case 0:
		return nil, fmt.Errorf("%w: %s in %s of %s", ErrTargetNotFound, t, g.FunctionName, g.Path)
	case 1:
		return g.Block(sites[0].BlockID), nil
	default:
		return nil, &AmbiguousError{Target: t, Candidates: sites}
	}
}

// Result is the outcome of one guard query.
type Result struct {
	Fact   platform.Fact `json:"fact"`
	Block  *cfg.Block    `json:"-"`
	Target Target        `json:"-"`
}

// Guaranteed unpacks a leaf fact. ok is false for empty and unknown,
// which callers must treat identically when deciding whether to trust
// the guard.
func (r Result) Guaranteed() (name string, negated bool, ok bool) {
	if !r.Fact.IsGuarantee() {
		return "", false, false
	}
	return r.Fact.Name, r.Fact.Negated, true
}

// Query locates the target in g and computes the platform fact guaranteed
// to hold when control reaches it.
func Query(g *cfg.Graph, t Target, r *platform.Recognizer) (Result, error) {
	blk, err := Locate(g, t)
	if err != nil {
		return Result{}, err
	}
	fact := platform.Analyze(g, blk, r)
	return Result{Fact: fact, Block: blk, Target: t}, nil
}
