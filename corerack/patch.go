package corerack

/*------------------------------------------------------------------
 *
 * Purpose:	Patch graph: owns nodes and cables, and the
 *		mutable topology-editing operations. A successful edit
 *		clears the compiled flag; Compile (compiler.go) rebuilds
 *		the execution plan the kernel (kernel.go) ticks.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// node is one module instance living in a Patch.
type node struct {
	id     string
	module Module
	spec   *PortSpec
	seq    int // insertion order, for stable compiler tie-breaks
}

// Patch owns a set of nodes and cables, a sample rate, the selected sink,
// and - once Compile succeeds - a frozen ExecutionPlan. It is driven from
// a single thread: the editing operations below and Tick/ProcessBlock in
// kernel.go are not safe to call concurrently with each other on the
// same Patch.
type Patch struct {
	sampleRate float64
	validation ValidationMode

	nodes   map[string]*node
	order   []string // node insertion order
	nextSeq int

	cables       map[CableID]*Cable
	cableOrder   []CableID
	nextCableSeq uint64

	sink string

	compiled bool
	plan     *ExecutionPlan

	// outputs holds each node's most recently written output values,
	// persisted across ticks (needed by unit-delay-adjacent normalling
	// and by the observer). Allocated once at Compile time.
	outputs map[string][]float64

	logger *log.Logger
}

// NewPatch creates an empty, uncompiled patch at the given sample rate
// with the default Warn validation mode.
func NewPatch(sampleRate float64) *Patch {
	return &Patch{
		sampleRate: sampleRate,
		validation: ValidationWarn,
		nodes:      make(map[string]*node),
		cables:     make(map[CableID]*Cable),
		logger:     log.Default(),
	}
}

// SetLogger overrides the logger used for Warn-mode connect diagnostics.
func (p *Patch) SetLogger(l *log.Logger) {
	if l != nil {
		p.logger = l
	}
}

// SetValidationMode changes how aggressively Connect enforces signal-kind
// compatibility. It does not invalidate an existing compiled plan.
func (p *Patch) SetValidationMode(m ValidationMode) {
	p.validation = m
}

// ValidationMode returns the patch's current validation mode.
func (p *Patch) ValidationMode() ValidationMode {
	return p.validation
}

// SampleRate returns the patch's current sample rate.
func (p *Patch) SampleRate() float64 {
	return p.sampleRate
}

// Compiled reports whether Compile has succeeded since the last
// topology-invalidating edit.
func (p *Patch) Compiled() bool {
	return p.compiled
}

func (p *Patch) invalidate() {
	p.compiled = false
	p.plan = nil
}

// AddNode registers a new module instance under id. It fails with
// ErrNameInUse if id is already taken.
func (p *Patch) AddNode(id string, m Module) error {
	if _, dup := p.nodes[id]; dup {
		return &ErrNameInUse{Name: id}
	}
	n := &node{id: id, module: m, spec: m.PortSpec(), seq: p.nextSeq}
	p.nextSeq++
	m.SetSampleRate(p.sampleRate)
	p.nodes[id] = n
	p.order = append(p.order, id)
	p.invalidate()
	return nil
}

// RemoveNode deletes a node and every cable touching it.
func (p *Patch) RemoveNode(id string) error {
	if _, ok := p.nodes[id]; !ok {
		return &ErrUnknownPort{Ref: id}
	}
	delete(p.nodes, id)
	for i, o := range p.order {
		if o == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	for cid, c := range p.cables {
		if c.SourceNode == id || c.DestNode == id {
			p.removeCableLocked(cid)
		}
	}
	if p.sink == id {
		p.sink = ""
	}
	p.invalidate()
	return nil
}

// ParsePortRef splits a canonical "node.port" reference into its parts.
func ParsePortRef(ref string) (nodeID, port string, err error) {
	i := strings.IndexByte(ref, '.')
	if i < 0 || i == 0 || i == len(ref)-1 {
		return "", "", &ErrUnknownPort{Ref: ref}
	}
	return ref[:i], ref[i+1:], nil
}

func (p *Patch) resolveOutput(ref string) (*node, PortDef, int, error) {
	nodeID, port, err := ParsePortRef(ref)
	if err != nil {
		return nil, PortDef{}, 0, err
	}
	n, ok := p.nodes[nodeID]
	if !ok {
		return nil, PortDef{}, 0, &ErrUnknownPort{Ref: ref}
	}
	idx, ok := n.spec.OutputIndex(port)
	if !ok {
		return nil, PortDef{}, 0, &ErrUnknownPort{Ref: ref}
	}
	return n, n.spec.Outputs[idx], idx, nil
}

func (p *Patch) resolveInput(ref string) (*node, PortDef, int, error) {
	nodeID, port, err := ParsePortRef(ref)
	if err != nil {
		return nil, PortDef{}, 0, err
	}
	n, ok := p.nodes[nodeID]
	if !ok {
		return nil, PortDef{}, 0, &ErrUnknownPort{Ref: ref}
	}
	idx, ok := n.spec.InputIndex(port)
	if !ok {
		return nil, PortDef{}, 0, &ErrUnknownPort{Ref: ref}
	}
	return n, n.spec.Inputs[idx], idx, nil
}

// Connect adds a cable from a "node.port" output reference to a
// "node.port" input reference. It validates both endpoints exist, that
// the destination accepts the source kind under the current validation
// mode, and that a non-default attenuation/offset is only used where the
// destination port allows it.
func (p *Patch) Connect(from, to string, opts CableOpts) (CableID, error) {
	_, srcPort, _, err := p.resolveOutput(from)
	if err != nil {
		return "", err
	}
	_, dstPort, _, err := p.resolveInput(to)
	if err != nil {
		return "", err
	}

	if p.validation != ValidationNone {
		result := CheckCompatibility(srcPort.Kind, dstPort.Kind)
		switch result.Level {
		case Incompatible:
			return "", &ErrIncompatible{From: srcPort.Kind, To: dstPort.Kind, Message: result.Message}
		case WarningCompat:
			if p.validation == ValidationStrict {
				return "", &ErrIncompatible{From: srcPort.Kind, To: dstPort.Kind, Message: result.Message}
			}
			p.logger.Warn("questionable cable", "from", from, "to", to, "reason", result.Message)
		}
	}

	atten := opts.attenuation()
	offset := opts.offset()
	if !dstPort.AttenuverterAllowed && (atten != DefaultAttenuation || offset != DefaultOffset) {
		return "", &ErrAttenuverterDisallowed{PortRef: to}
	}
	atten = clamp(atten, MinAttenuation, MaxAttenuation)
	offset = clamp(offset, MinOffset, MaxOffset)

	id := opts.ID
	if id == "" {
		id = p.nextCableID()
	} else if _, dup := p.cables[id]; dup {
		return "", &ErrNameInUse{Name: string(id)}
	}

	fromNode, fromPort, _ := ParsePortRef(from)
	toNode, toPort, _ := ParsePortRef(to)

	p.cables[id] = &Cable{
		ID:           id,
		SourceNode:   fromNode,
		SourceOutput: fromPort,
		DestNode:     toNode,
		DestInput:    toPort,
		Attenuation:  atten,
		Offset:       offset,
	}
	p.cableOrder = append(p.cableOrder, id)
	p.invalidate()
	return id, nil
}

func (p *Patch) nextCableID() CableID {
	for {
		p.nextCableSeq++
		id := CableID("c" + strconv.FormatUint(p.nextCableSeq, 10))
		if _, dup := p.cables[id]; !dup {
			return id
		}
	}
}

func (p *Patch) removeCableLocked(id CableID) {
	delete(p.cables, id)
	for i, c := range p.cableOrder {
		if c == id {
			p.cableOrder = append(p.cableOrder[:i], p.cableOrder[i+1:]...)
			break
		}
	}
}

// Disconnect removes a single cable by id.
func (p *Patch) Disconnect(id CableID) error {
	if _, ok := p.cables[id]; !ok {
		return &ErrUnknownPort{Ref: string(id)}
	}
	p.removeCableLocked(id)
	p.invalidate()
	return nil
}

// DisconnectPort removes every cable terminating at the given
// "node.port" input reference.
func (p *Patch) DisconnectPort(portRef string) error {
	nodeID, port, err := ParsePortRef(portRef)
	if err != nil {
		return err
	}
	var toRemove []CableID
	for id, c := range p.cables {
		if c.DestNode == nodeID && c.DestInput == port {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		p.removeCableLocked(id)
	}
	p.invalidate()
	return nil
}

// SetOutput designates the sink node; it must exist. Whether it exposes a
// "left" output is checked at Compile, not here.
func (p *Patch) SetOutput(id string) error {
	if _, ok := p.nodes[id]; !ok {
		return &ErrUnknownPort{Ref: id}
	}
	p.sink = id
	p.invalidate()
	return nil
}

// Output returns the currently designated sink node id, or "" if unset.
func (p *Patch) Output() string {
	return p.sink
}

// SetSampleRate propagates a new sample rate to every node and
// invalidates the compiled plan.
func (p *Patch) SetSampleRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("corerack: sample rate must be positive, got %v", rate)
	}
	p.sampleRate = rate
	for _, id := range p.order {
		p.nodes[id].module.SetSampleRate(rate)
	}
	p.invalidate()
	return nil
}

// Reset clears every node's internal state without touching topology,
// sample rate, or output selection. The persisted output-value table is
// zeroed too, so the next tick behaves as if from freshly initialized
// modules.
func (p *Patch) Reset() {
	for _, id := range p.order {
		p.nodes[id].module.Reset()
	}
	for id := range p.outputs {
		vals := p.outputs[id]
		for i := range vals {
			vals[i] = 0
		}
	}
}

// NodeIDs returns every node id in insertion order.
func (p *Patch) NodeIDs() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Cables returns a snapshot of every cable in insertion order.
func (p *Patch) Cables() []Cable {
	out := make([]Cable, 0, len(p.cableOrder))
	for _, id := range p.cableOrder {
		out = append(out, *p.cables[id])
	}
	return out
}

// Node looks up a node's module by id.
func (p *Patch) Node(id string) (Module, bool) {
	n, ok := p.nodes[id]
	if !ok {
		return nil, false
	}
	return n.module, true
}

// portValue reads the most recently written value of a node's output
// port, or 0 if the node/port is unknown or hasn't ticked yet. Used by the
// state observer.
func (p *Patch) portValue(nodeID, port string) float64 {
	n, ok := p.nodes[nodeID]
	if !ok {
		return 0
	}
	idx, ok := n.spec.OutputIndex(port)
	if !ok {
		return 0
	}
	vals, ok := p.outputs[nodeID]
	if !ok || idx >= len(vals) {
		return 0
	}
	return vals[idx]
}
