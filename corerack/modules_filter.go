package corerack

/*------------------------------------------------------------------
 *
 * Purpose:	State-variable filter: simultaneous low-pass, high-pass,
 *		and band-pass outputs from one Chamberlin-topology
 *		two-integrator-loop filter, cutoff set by a V/Oct input
 *		and resonance by a parameter. This is the
 *		textbook form, valid for cutoff well below Nyquist, without
 *		the coefficient tuning a production filter would need for
 *		stability at high resonance near Nyquist.
 *
 *------------------------------------------------------------------*/

import "math"

type svf struct {
	sampleRate float64
	resonance  float64 // 0..1, higher = more resonant
	low, band  float64 // integrator state
}

func newSVF(sampleRate float64) Module {
	return &svf{sampleRate: sampleRate, resonance: 0.2}
}

var svfPortSpec = NewPortSpec(
	[]PortDef{
		{Name: "in", Kind: Audio, Default: 0, AttenuverterAllowed: true},
		{Name: "cutoff_v_oct", Kind: VoltPerOctave, Default: 0, AttenuverterAllowed: true},
	},
	[]PortDef{
		{Name: "low", Kind: Audio},
		{Name: "high", Kind: Audio},
		{Name: "band", Kind: Audio},
	},
)

func (m *svf) PortSpec() *PortSpec { return svfPortSpec }

func (m *svf) Tick(in, out []float64) {
	signal := in[0]
	cutoffHz := VoltsToFrequency(in[1])
	nyquist := m.sampleRate / 2
	if cutoffHz > nyquist*0.45 {
		cutoffHz = nyquist * 0.45
	}
	if cutoffHz < 1 {
		cutoffHz = 1
	}

	f := 2 * math.Sin(math.Pi*cutoffHz/m.sampleRate)
	q := 1 - clamp(m.resonance, 0, 0.99)

	high := signal - m.low - q*m.band
	m.band += f * high
	m.low += f * m.band

	out[0] = m.low
	out[1] = high
	out[2] = m.band
}

func (m *svf) Reset() {
	m.low, m.band = 0, 0
}

func (m *svf) SetSampleRate(rate float64) {
	m.sampleRate = rate
}

func (m *svf) Params() []ParamInfo {
	return []ParamInfo{
		{ID: "resonance", Name: "Resonance", Min: 0, Max: 0.99, Default: 0.2, Current: m.resonance, Curve: CurveLinear, Hint: HintKnob, Format: FormatPercent},
	}
}

func (m *svf) SetParam(id string, value float64) error {
	if id != "resonance" {
		return &ErrUnknownPort{Ref: "svf#" + id}
	}
	m.resonance = clamp(value, 0, 0.99)
	return nil
}

func (m *svf) GetParam(id string) (float64, error) {
	if id != "resonance" {
		return 0, &ErrUnknownPort{Ref: "svf#" + id}
	}
	return m.resonance, nil
}
