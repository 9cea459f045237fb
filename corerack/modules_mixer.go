package corerack

/*------------------------------------------------------------------
 *
 * Purpose:	N-input summing audio mixer with a per-input level
 *		parameter, independent of whatever attenuation a patch
 *		cable into that input already applies.
 *
 *------------------------------------------------------------------*/

const mixerInputCount = 4

type mixer struct {
	levels [mixerInputCount]float64
}

func newMixer(sampleRate float64) Module {
	m := &mixer{}
	for i := range m.levels {
		m.levels[i] = 1
	}
	return m
}

var mixerPortSpec = buildMixerPortSpec()

func buildMixerPortSpec() *PortSpec {
	inputs := make([]PortDef, mixerInputCount)
	for i := range inputs {
		inputs[i] = PortDef{Name: mixerInputName(i), Kind: Audio, Default: 0, AttenuverterAllowed: true}
	}
	return NewPortSpec(inputs, []PortDef{{Name: "out", Kind: Audio}})
}

func mixerInputName(i int) string {
	return "in" + string(rune('1'+i))
}

func (m *mixer) PortSpec() *PortSpec { return mixerPortSpec }

func (m *mixer) Tick(in, out []float64) {
	var sum float64
	for i, v := range in {
		sum += v * m.levels[i]
	}
	out[0] = sum
}

func (m *mixer) Reset()                     {}
func (m *mixer) SetSampleRate(rate float64) {}

func (m *mixer) Params() []ParamInfo {
	params := make([]ParamInfo, mixerInputCount)
	for i := range params {
		params[i] = ParamInfo{
			ID: mixerInputName(i), Name: "Level " + mixerInputName(i),
			Min: 0, Max: 2, Default: 1, Current: m.levels[i],
			Curve: CurveLinear, Hint: HintKnob, Format: FormatPercent,
		}
	}
	return params
}

func (m *mixer) SetParam(id string, value float64) error {
	for i := 0; i < mixerInputCount; i++ {
		if id == mixerInputName(i) {
			m.levels[i] = clamp(value, 0, 2)
			return nil
		}
	}
	return &ErrUnknownPort{Ref: "mixer#" + id}
}

func (m *mixer) GetParam(id string) (float64, error) {
	for i := 0; i < mixerInputCount; i++ {
		if id == mixerInputName(i) {
			return m.levels[i], nil
		}
	}
	return 0, &ErrUnknownPort{Ref: "mixer#" + id}
}
