package corerack

/*------------------------------------------------------------------
 *
 * Purpose:	Runtime kernel: per-sample tick using the
 *		compiled order. Zero allocation, zero locks, exactly one
 *		module.Tick per node per sample.
 *
 * Description:	Unit-delay modules tick in a second pass, after every
 *		other node has produced this sample's output. A unit-delay's
 *		own input is therefore always resolved from fully fresh
 *		values, and the table slot it writes is left untouched until
 *		the next sample's first pass reads it - deferring the state
 *		swap to end-of-sample, per the one-sample feedback-loop
 *		guarantee (compiler.go excludes its input edges from the
 *		ordering dependency graph so this split never deadlocks).
 *
 *------------------------------------------------------------------*/

// Tick advances the patch by exactly one sample and returns the sink's
// (left, right) output. It requires Compile to have succeeded since the
// last topology edit.
func (p *Patch) Tick() (left, right float64, err error) {
	if !p.compiled {
		return 0, 0, ErrNotCompiled
	}
	p.tickOnce()
	return p.sinkValues()
}

// tickOnce runs every scheduled node exactly once. Non-delay nodes go
// first, in the compiled topological order; unit-delay nodes go second, so
// every unit-delay reads a cable input that every other node has already
// updated for this sample, and the value it writes back is not visible to
// anything else until the following sample's first pass.
func (p *Patch) tickOnce() {
	for i := range p.plan.order {
		sn := &p.plan.order[i]
		if sn.isDelay {
			continue
		}
		sn.module.Tick(p.resolveInputs(sn), p.outputs[sn.id])
	}
	for i := range p.plan.order {
		sn := &p.plan.order[i]
		if !sn.isDelay {
			continue
		}
		sn.module.Tick(p.resolveInputs(sn), p.outputs[sn.id])
	}
}

// resolveInputs fills and returns sn's scratch input buffer: each port is
// the attenuated, offset cable sum, the normalled fallback, or the port's
// default, in that priority order.
func (p *Patch) resolveInputs(sn *scheduledNode) []float64 {
	resolved := sn.inBuf
	for gi, g := range sn.groups {
		switch {
		case len(g.sources) > 0:
			var v float64
			for _, s := range g.sources {
				v += s.attenuation*p.outputs[s.sourceNode][s.sourceOutputIndex] + s.offset
			}
			resolved[gi] = v
		case g.normalled == normalledInput:
			if g.normalledIdx < gi {
				resolved[gi] = resolved[g.normalledIdx]
			} else {
				resolved[gi] = sn.groups[g.normalledIdx].defaultValue
			}
		case g.normalled == normalledOutput:
			resolved[gi] = p.outputs[sn.id][g.normalledIdx]
		default:
			resolved[gi] = g.defaultValue
		}
	}
	return resolved
}

func (p *Patch) sinkValues() (left, right float64, err error) {
	sinkOutputs, ok := p.outputs[p.plan.sink]
	if !ok {
		return 0, 0, ErrMissingOutput
	}
	sinkNode := p.nodes[p.plan.sink]
	leftIdx, ok := sinkNode.spec.OutputIndex("left")
	if !ok {
		return 0, 0, ErrMissingOutput
	}
	left = sinkOutputs[leftIdx]
	right = left
	if rightIdx, ok := sinkNode.spec.OutputIndex("right"); ok {
		right = sinkOutputs[rightIdx]
	}
	return left, right, nil
}

// ProcessBlock ticks the patch n times and returns the result as
// interleaved float32 stereo samples (length 2n). If obs is non-nil, its
// per-sample accumulators (Level/Gate/Scope/Spectrum) observe every
// sample in the block, and its Param accumulators are sampled once at
// the end of the block - the same semantics as n individual Tick calls
// followed by one subscribe poll opportunity.
func (p *Patch) ProcessBlock(n int, obs *Observer) ([]float32, error) {
	if !p.compiled {
		return nil, ErrNotCompiled
	}
	out := make([]float32, 2*n)
	for i := 0; i < n; i++ {
		p.tickOnce()
		left, right, err := p.sinkValues()
		if err != nil {
			return nil, err
		}
		out[2*i] = float32(left)
		out[2*i+1] = float32(right)
		if obs != nil {
			obs.observeSample(p, i == n-1)
		}
	}
	return out, nil
}
