package corerack

/*------------------------------------------------------------------
 *
 * Purpose:	Graph compiler: builds the effective DAG by
 *		excluding unit-delay back-edges, topologically sorts the
 *		nodes reachable from the sink with Kahn's algorithm,
 *		breaking ties by insertion order for determinism, and
 *		precomputes each node's per-input summing groups.
 *
 *------------------------------------------------------------------*/

import "sort"

// normalledKind distinguishes what an input's normalled-to fallback
// resolves against.
type normalledKind int

const (
	normalledNone normalledKind = iota
	normalledInput
	normalledOutput
)

// inputSource is one cable's contribution to a destination input.
type inputSource struct {
	sourceNode        string
	sourceOutputIndex int
	attenuation       float64
	offset            float64
}

// inputGroup is the precomputed summing recipe for one input port of one
// scheduled node.
type inputGroup struct {
	portIndex     int
	sources       []inputSource
	normalled     normalledKind
	normalledIdx  int // index into Inputs or Outputs, per normalled kind
	defaultValue  float64
}

// scheduledNode is one node's place in the frozen execution order, with
// its input groups and tick-time scratch buffers preallocated so Tick
// never allocates.
type scheduledNode struct {
	id      string
	module  Module
	groups  []inputGroup
	inBuf   []float64
	isDelay bool
}

// ExecutionPlan is the frozen, validated schedule Compile produces.
type ExecutionPlan struct {
	order []scheduledNode
	sink  string
}

// Compile validates the current topology and produces a frozen
// ExecutionPlan. On success, Patch.Compiled() becomes true and Tick/
// ProcessBlock become callable. On failure the patch is left unchanged
// and uncompiled - there is no partial plan.
func (p *Patch) Compile() error {
	if p.sink == "" {
		return ErrMissingOutput
	}
	sinkNode, ok := p.nodes[p.sink]
	if !ok {
		return ErrMissingOutput
	}
	if _, ok := sinkNode.spec.OutputIndex("left"); !ok {
		return ErrMissingOutput
	}

	// Step 1: build the effective DAG. An edge whose destination node is
	// a unit-delay module is a back-edge - excluded from the dependency
	// graph used for ordering, since the kernel runs every unit-delay in
	// its own pass after all other nodes (kernel.go) rather than placing
	// it at its topological position, so its source never needs to be
	// scheduled first.
	forward := make(map[string][]string)  // nodeID -> nodes it feeds
	reverse := make(map[string][]string)  // nodeID -> nodes that feed it (DAG edges only)
	feeders := make(map[string][]string)  // nodeID -> nodes that feed it (all edges, for reachability)
	indegree := make(map[string]int)
	for id := range p.nodes {
		indegree[id] = 0
	}
	for _, cid := range p.cableOrder {
		c := p.cables[cid]
		feeders[c.DestNode] = append(feeders[c.DestNode], c.SourceNode)
		destNode := p.nodes[c.DestNode]
		if _, isDelay := destNode.module.(unitDelayModule); isDelay {
			continue // back-edge, excluded from the DAG
		}
		forward[c.SourceNode] = append(forward[c.SourceNode], c.DestNode)
		reverse[c.DestNode] = append(reverse[c.DestNode], c.SourceNode)
	}

	// Reachability: every node that (transitively) feeds the sink, plus
	// the sink itself.
	reachable := make(map[string]bool)
	var visit func(string)
	visit = func(id string) {
		if reachable[id] {
			return
		}
		reachable[id] = true
		for _, src := range feeders[id] {
			visit(src)
		}
	}
	visit(p.sink)

	for id := range reachable {
		indegree[id] = 0
	}
	for src, dests := range forward {
		if !reachable[src] {
			continue
		}
		for _, dst := range dests {
			if reachable[dst] {
				indegree[dst]++
			}
		}
	}

	// Step 2/3: Kahn's algorithm, ties broken by insertion order.
	var ready []string
	for id := range reachable {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}
	sortBySeq := func(ids []string) {
		sort.SliceStable(ids, func(i, j int) bool {
			return p.nodes[ids[i]].seq < p.nodes[ids[j]].seq
		})
	}
	sortBySeq(ready)

	var orderedIDs []string
	for len(ready) > 0 {
		sortBySeq(ready)
		id := ready[0]
		ready = ready[1:]
		orderedIDs = append(orderedIDs, id)
		for _, dst := range forward[id] {
			if !reachable[dst] {
				continue
			}
			indegree[dst]--
			if indegree[dst] == 0 {
				ready = append(ready, dst)
			}
		}
	}

	if len(orderedIDs) != len(reachable) {
		var cyclic []string
		ordered := make(map[string]bool, len(orderedIDs))
		for _, id := range orderedIDs {
			ordered[id] = true
		}
		for id := range reachable {
			if !ordered[id] {
				cyclic = append(cyclic, id)
			}
		}
		sort.Strings(cyclic)
		return &ErrCycleDetected{Nodes: cyclic}
	}

	// Step 4: precompute per-input summing groups for every scheduled
	// node, and the tick-time output table.
	outputs := make(map[string][]float64, len(orderedIDs))
	for _, id := range orderedIDs {
		outputs[id] = make([]float64, len(p.nodes[id].spec.Outputs))
	}

	plan := &ExecutionPlan{sink: p.sink}
	for _, id := range orderedIDs {
		n := p.nodes[id]
		groups := make([]inputGroup, len(n.spec.Inputs))
		for i, def := range n.spec.Inputs {
			groups[i] = inputGroup{portIndex: i, defaultValue: def.Default}
			if def.NormalledTo != "" {
				// A sibling input is checked first: normalling to another
				// input of the same tick (e.g. right normalled to left on
				// a stereo sink) must see this sample's value, not the
				// previous tick's output. Only a name with no sibling
				// input falls back to reading the node's own last output.
				if inIdx, ok := n.spec.InputIndex(def.NormalledTo); ok {
					groups[i].normalled = normalledInput
					groups[i].normalledIdx = inIdx
				} else if outIdx, ok := n.spec.OutputIndex(def.NormalledTo); ok {
					groups[i].normalled = normalledOutput
					groups[i].normalledIdx = outIdx
				}
			}
		}
		for _, cid := range p.cableOrder {
			c := p.cables[cid]
			if c.DestNode != id {
				continue
			}
			// Unit-delay inputs are summed normally here; only the
			// scheduling constraint (the reverse-edge exclusion above)
			// treats them as a back-edge.
			inIdx, ok := n.spec.InputIndex(c.DestInput)
			if !ok {
				return &ErrUnknownPort{Ref: c.DestNode + "." + c.DestInput}
			}
			srcNode, ok := p.nodes[c.SourceNode]
			if !ok {
				return &ErrUnknownPort{Ref: c.SourceNode + "." + c.SourceOutput}
			}
			outIdx, ok := srcNode.spec.OutputIndex(c.SourceOutput)
			if !ok {
				return &ErrUnknownPort{Ref: c.SourceNode + "." + c.SourceOutput}
			}
			groups[inIdx].sources = append(groups[inIdx].sources, inputSource{
				sourceNode:        c.SourceNode,
				sourceOutputIndex: outIdx,
				attenuation:       c.Attenuation,
				offset:            c.Offset,
			})
		}
		_, isDelay := n.module.(unitDelayModule)
		plan.order = append(plan.order, scheduledNode{
			id:      id,
			module:  n.module,
			groups:  groups,
			inBuf:   make([]float64, len(n.spec.Inputs)),
			isDelay: isDelay,
		})
	}

	// Step 5: freeze.
	p.plan = plan
	p.outputs = outputs
	p.compiled = true
	return nil
}
