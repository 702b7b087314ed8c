package cfg

// builder holds the mutable state shared by the per-language extractors
// while a graph is under construction. Front-ends allocate blocks, wire
// edges, and finally seal the graph so successor/predecessor views agree.
type builder struct {
	graph  *Graph
	loops  []loopFrame
	breaks []*Block // break targets: loops and switches
	exits  []*Block // blocks that terminate the function (return and fallout)
}

// loopFrame tracks the jump targets of the innermost enclosing loop.
type loopFrame struct {
	header *Block // continue target
	after  *Block // break target
}

func newBuilder(path, language, functionName string) *builder {
	return &builder{
		graph: &Graph{
			FunctionName: functionName,
			Path:         path,
			Language:     language,
		},
	}
}

// newBlock allocates a block and appends it to the graph.
func (b *builder) newBlock(kind BlockKind, line int) *Block {
	blk := &Block{
		ID:        len(b.graph.Blocks),
		Kind:      kind,
		StartLine: line,
		EndLine:   line,
		CondKind:  CondNone,
		Reachable: true,
	}
	b.graph.Blocks = append(b.graph.Blocks, blk)
	return blk
}

// addOp appends an operation to a block, extending its line range.
func (b *builder) addOp(blk *Block, text string, startLine, endLine int) {
	if blk == nil || text == "" {
		return
	}
	blk.Operations = append(blk.Operations, Operation{
		Text:      text,
		StartLine: startLine,
		EndLine:   endLine,
	})
	if endLine > blk.EndLine {
		blk.EndLine = endLine
	}
}

// addMarker appends a synthetic operation (entry, exit) to a block.
func (b *builder) addMarker(blk *Block, text string, line int) {
	blk.Operations = append(blk.Operations, Operation{
		Text:      text,
		StartLine: line,
		EndLine:   line,
		Synthetic: true,
	})
}

// connect wires src to dst. A conditional edge becomes src's
// conditional-successor edge, any other edge its fallthrough edge. The edge
// is also recorded on dst's predecessor list.
func (b *builder) connect(src, dst *Block, conditional bool) {
	if src == nil || dst == nil {
		return
	}
	e := Edge{Source: src.ID, Dest: dst.ID, Conditional: conditional}
	if conditional {
		src.CondSucc = &e
	} else {
		src.FallSucc = &e
	}
	dst.Preds = append(dst.Preds, e)
}

// branch marks blk as a conditional block selecting its conditional
// successor according to kind.
func (b *builder) branch(blk *Block, cond *Expr, kind CondKind) {
	blk.Cond = cond
	blk.CondKind = kind
}

// pushLoop/popLoop maintain the continue and break target stacks. Switches
// push a break target only, via pushBreak.
func (b *builder) pushLoop(header, after *Block) {
	b.loops = append(b.loops, loopFrame{header: header, after: after})
	b.pushBreak(after)
}

func (b *builder) popLoop() {
	b.loops = b.loops[:len(b.loops)-1]
	b.popBreak()
}

func (b *builder) currentLoop() (loopFrame, bool) {
	if len(b.loops) == 0 {
		return loopFrame{}, false
	}
	return b.loops[len(b.loops)-1], true
}

func (b *builder) pushBreak(target *Block) {
	b.breaks = append(b.breaks, target)
}

func (b *builder) popBreak() {
	b.breaks = b.breaks[:len(b.breaks)-1]
}

func (b *builder) currentBreak() (*Block, bool) {
	if len(b.breaks) == 0 {
		return nil, false
	}
	return b.breaks[len(b.breaks)-1], true
}

// terminate records blk as flowing straight to the function exit.
func (b *builder) terminate(blk *Block) {
	if blk != nil {
		b.exits = append(b.exits, blk)
	}
}

// seal attaches the exit block and finishes the graph. last is the block
// control falls out of at the end of the body, nil if the body cannot
// complete normally.
func (b *builder) seal(entry, last *Block, endLine int) *Graph {
	exit := b.newBlock(BlockExit, endLine)
	b.addMarker(exit, "exit", endLine)
	if last != nil {
		b.connect(last, exit, false)
	}
	for _, blk := range b.exits {
		b.connect(blk, exit, false)
	}
	b.graph.EntryID = entry.ID
	b.graph.ExitID = exit.ID
	return b.graph
}
