package corerack

/*------------------------------------------------------------------
 *
 * Purpose:	Voltage-controlled oscillator. A phase accumulator
 *		driven by a V/Oct input, in the same phase-increment style
 *		as a classic tone generator, but carried as a floating-point
 *		fraction of a cycle (0..1) instead of a fixed-point tick
 *		counter. Deliberately
 *		simple but complete, allocation-free, and deterministic.
 *
 *------------------------------------------------------------------*/

import "math"

// vcoWaveform selects the VCO's output shape.
type vcoWaveform int

const (
	vcoSine vcoWaveform = iota
	vcoSaw
	vcoSquare
	vcoTriangle
)

type vco struct {
	sampleRate float64
	phase      float64 // 0..1
	waveform   vcoWaveform
	pulseWidth float64 // 0..1, square only
}

func newVCO(sampleRate float64) Module {
	return &vco{sampleRate: sampleRate, waveform: vcoSine, pulseWidth: 0.5}
}

var vcoPortSpec = NewPortSpec(
	[]PortDef{
		{Name: "v_oct", Kind: VoltPerOctave, Default: 0, AttenuverterAllowed: true},
		{Name: "fm", Kind: Audio, Default: 0, AttenuverterAllowed: true},
		{Name: "sync", Kind: Trigger, Default: 0, AttenuverterAllowed: false},
	},
	[]PortDef{
		{Name: "out", Kind: Audio},
	},
)

func (m *vco) PortSpec() *PortSpec { return vcoPortSpec }

func (m *vco) Tick(in, out []float64) {
	vOct := in[0]
	fm := in[1]
	sync := in[2]

	if sync > 2.5 {
		m.phase = 0
	}

	freq := VoltsToFrequency(vOct) + fm
	if freq < 0 {
		freq = 0
	}
	increment := freq / m.sampleRate

	var sample float64
	switch m.waveform {
	case vcoSine:
		sample = math.Sin(2 * math.Pi * m.phase)
	case vcoSaw:
		sample = 2*m.phase - 1
	case vcoSquare:
		if m.phase < m.pulseWidth {
			sample = 1
		} else {
			sample = -1
		}
	case vcoTriangle:
		sample = 4*math.Abs(m.phase-0.5) - 1
	}
	out[0] = 5 * sample // scaled to the Audio convention, nominally +-5

	m.phase += increment
	m.phase -= math.Floor(m.phase)
}

func (m *vco) Reset() {
	m.phase = 0
}

func (m *vco) SetSampleRate(rate float64) {
	m.sampleRate = rate
}

func (m *vco) Params() []ParamInfo {
	return []ParamInfo{
		{ID: "waveform", Name: "Waveform", Min: 0, Max: 3, Default: 0, Current: float64(m.waveform), Curve: CurveStepped, Steps: 4, Hint: HintSelect, Format: FormatDecimal},
		{ID: "pulse_width", Name: "Pulse Width", Min: 0.05, Max: 0.95, Default: 0.5, Current: m.pulseWidth, Curve: CurveLinear, Hint: HintKnob, Format: FormatPercent},
	}
}

func (m *vco) SetParam(id string, value float64) error {
	switch id {
	case "waveform":
		m.waveform = vcoWaveform(clamp(value, 0, 3))
	case "pulse_width":
		m.pulseWidth = clamp(value, 0.05, 0.95)
	default:
		return &ErrUnknownPort{Ref: "vco#" + id}
	}
	return nil
}

func (m *vco) GetParam(id string) (float64, error) {
	switch id {
	case "waveform":
		return float64(m.waveform), nil
	case "pulse_width":
		return m.pulseWidth, nil
	default:
		return 0, &ErrUnknownPort{Ref: "vco#" + id}
	}
}
