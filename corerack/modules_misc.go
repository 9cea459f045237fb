package corerack

/*------------------------------------------------------------------
 *
 * Purpose:	The remaining built-in module types: a sub-audio LFO, a
 *		white-noise source, the dedicated unit-delay feedback
 *		breaker, the atomic-backed external-input bridge, and the
 *		stereo output sink.
 *
 *------------------------------------------------------------------*/

import (
	"math"
	"sync/atomic"
)

// --- lfo ------------------------------------------------------------

type lfo struct {
	sampleRate float64
	phase      float64
	frequency  float64 // Hz
}

func newLFO(sampleRate float64) Module {
	return &lfo{sampleRate: sampleRate, frequency: 2}
}

var lfoPortSpec = NewPortSpec(
	[]PortDef{
		{Name: "rate_cv", Kind: CvBipolar, Default: 0, AttenuverterAllowed: true},
	},
	[]PortDef{
		{Name: "out", Kind: CvBipolar},
	},
)

func (m *lfo) PortSpec() *PortSpec { return lfoPortSpec }

func (m *lfo) Tick(in, out []float64) {
	freq := m.frequency * math.Pow(2, in[0]/5) // +-5V CV spans 2 octaves
	if freq < 0 {
		freq = 0
	}
	out[0] = 5 * math.Sin(2*math.Pi*m.phase)
	m.phase += freq / m.sampleRate
	m.phase -= math.Floor(m.phase)
}

func (m *lfo) Reset()                     { m.phase = 0 }
func (m *lfo) SetSampleRate(rate float64) { m.sampleRate = rate }

func (m *lfo) Params() []ParamInfo {
	return []ParamInfo{
		{ID: "frequency", Name: "Frequency", Min: 0.01, Max: 50, Default: 2, Current: m.frequency, Curve: CurveExponential, Hint: HintKnob, Format: FormatFrequency},
	}
}

func (m *lfo) SetParam(id string, value float64) error {
	if id != "frequency" {
		return &ErrUnknownPort{Ref: "lfo#" + id}
	}
	m.frequency = clamp(value, 0.01, 50)
	return nil
}

func (m *lfo) GetParam(id string) (float64, error) {
	if id != "frequency" {
		return 0, &ErrUnknownPort{Ref: "lfo#" + id}
	}
	return m.frequency, nil
}

// --- noise ------------------------------------------------------------

// noise is a simple xorshift64 generator scaled to the Audio convention.
// Deterministic given its internal state, per the Module contract.
type noise struct {
	state uint64
}

func newNoise(sampleRate float64) Module {
	return &noise{state: 0x9e3779b97f4a7c15}
}

var noisePortSpec = NewPortSpec(nil, []PortDef{{Name: "out", Kind: Audio}})

func (m *noise) PortSpec() *PortSpec { return noisePortSpec }

func (m *noise) Tick(in, out []float64) {
	m.state ^= m.state << 13
	m.state ^= m.state >> 7
	m.state ^= m.state << 17
	// Top 53 bits -> a uniform float in [0,1), then remapped to +-5V.
	u := float64(m.state>>11) / float64(1<<53)
	out[0] = 5 * (2*u - 1)
}

func (m *noise) Reset()                     { m.state = 0x9e3779b97f4a7c15 }
func (m *noise) SetSampleRate(rate float64) {}

// --- unit_delay ---------------------------------------------------------

// unitDelay is the dedicated feedback-breaker: its output this sample
// equals its input last sample. The compiler (compiler.go) identifies it
// via isUnitDelay and excludes edges into it from the topological-sort
// dependency graph, and the kernel (kernel.go) ticks it only after every
// other node has settled this sample's values. Because of that ordering,
// Tick itself needs no register: the patch's own output table already
// holds last sample's value untouched when this runs, so writing the
// freshly resolved input over it is the whole one-sample delay - the
// table slot won't be read again until the next sample's first pass.
type unitDelay struct{}

func newUnitDelay(sampleRate float64) Module {
	return &unitDelay{}
}

var unitDelayPortSpec = NewPortSpec(
	[]PortDef{{Name: "in", Kind: Audio, Default: 0, AttenuverterAllowed: true}},
	[]PortDef{{Name: "out", Kind: Audio}},
)

func (m *unitDelay) PortSpec() *PortSpec { return unitDelayPortSpec }

func (m *unitDelay) Tick(in, out []float64) {
	out[0] = in[0]
}

func (m *unitDelay) Reset()                     {}
func (m *unitDelay) SetSampleRate(rate float64) {}
func (m *unitDelay) isUnitDelay()               {}

// --- external_input -------------------------------------------------

// ExternalInputWriter is implemented by the external_input module type so
// control-thread bridges (MIDI, GPIO, keyboard) can write into it without
// reaching into the render thread's state.
type ExternalInputWriter interface {
	Write(value float64)
}

// externalInput bridges a control-thread-written value (MIDI-derived
// V/Oct, gate, velocity, CC) into the render thread via a single aligned
// 64-bit atomic, with no tearing and no locking on either side.
type externalInput struct {
	bits atomic.Uint64
}

func newExternalInput(sampleRate float64) Module {
	return &externalInput{}
}

var externalInputPortSpec = NewPortSpec(nil, []PortDef{{Name: "out", Kind: CvBipolar}})

func (m *externalInput) PortSpec() *PortSpec { return externalInputPortSpec }

func (m *externalInput) Tick(in, out []float64) {
	out[0] = math.Float64frombits(m.bits.Load())
}

func (m *externalInput) Reset() { m.bits.Store(0) }

func (m *externalInput) SetSampleRate(rate float64) {}

// Write sets the external value from the control thread. Relaxed with
// respect to the render thread's read: it always sees the latest complete
// write, never a torn one, because the slot is a single aligned uint64.
func (m *externalInput) Write(value float64) {
	m.bits.Store(math.Float64bits(value))
}

// --- stereo_output ----------------------------------------------------

// stereoOutput is the patch sink: it exposes "left" and "right" outputs
// mirroring its "left"/"right" inputs 1:1, with "right" normalled to
// "left" so an unpatched right input yields dual-mono output.
type stereoOutput struct{}

func newStereoOutput(sampleRate float64) Module {
	return &stereoOutput{}
}

var stereoOutputPortSpec = NewPortSpec(
	[]PortDef{
		{Name: "left", Kind: Audio, Default: 0, AttenuverterAllowed: true},
		{Name: "right", Kind: Audio, Default: 0, AttenuverterAllowed: true, NormalledTo: "left"},
	},
	[]PortDef{
		{Name: "left", Kind: Audio},
		{Name: "right", Kind: Audio},
	},
)

func (m *stereoOutput) PortSpec() *PortSpec { return stereoOutputPortSpec }

func (m *stereoOutput) Tick(in, out []float64) {
	out[0] = in[0]
	out[1] = in[1]
}

func (m *stereoOutput) Reset()                     {}
func (m *stereoOutput) SetSampleRate(rate float64) {}
