package corerack

/*------------------------------------------------------------------
 *
 * Purpose:	ADSR envelope generator. Gate in, CV out. Uses simple
 *		linear ramps in volts/second rather than the exponential
 *		curve shape a hardware envelope would use.
 *
 *------------------------------------------------------------------*/

type adsrStage int

const (
	adsrIdle adsrStage = iota
	adsrAttack
	adsrDecay
	adsrSustain
	adsrRelease
)

type adsr struct {
	sampleRate float64
	attack     float64 // seconds
	decay      float64 // seconds
	sustain    float64 // 0..10 volts
	release    float64 // seconds

	stage   adsrStage
	level   float64
	gateWas bool
}

func newADSR(sampleRate float64) Module {
	return &adsr{
		sampleRate: sampleRate,
		attack:     0.01,
		decay:      0.1,
		sustain:    7,
		release:    0.3,
	}
}

var adsrPortSpec = NewPortSpec(
	[]PortDef{
		{Name: "gate", Kind: Gate, Default: 0, AttenuverterAllowed: false},
	},
	[]PortDef{
		{Name: "out", Kind: CvUnipolar},
	},
)

func (m *adsr) PortSpec() *PortSpec { return adsrPortSpec }

func (m *adsr) Tick(in, out []float64) {
	gateOn := in[0] > 2.5
	if gateOn && !m.gateWas {
		m.stage = adsrAttack
	}
	if !gateOn && m.gateWas {
		m.stage = adsrRelease
	}
	m.gateWas = gateOn

	dt := 1 / m.sampleRate
	switch m.stage {
	case adsrAttack:
		if m.attack <= 0 {
			m.level = 10
		} else {
			m.level += 10 * dt / m.attack
		}
		if m.level >= 10 {
			m.level = 10
			m.stage = adsrDecay
		}
	case adsrDecay:
		if m.decay <= 0 {
			m.level = m.sustain
		} else {
			m.level -= 10 * dt / m.decay
		}
		if m.level <= m.sustain {
			m.level = m.sustain
			m.stage = adsrSustain
		}
	case adsrSustain:
		m.level = m.sustain
	case adsrRelease:
		if m.release <= 0 {
			m.level = 0
		} else {
			m.level -= 10 * dt / m.release
		}
		if m.level <= 0 {
			m.level = 0
			m.stage = adsrIdle
		}
	case adsrIdle:
		m.level = 0
	}
	out[0] = m.level
}

func (m *adsr) Reset() {
	m.stage = adsrIdle
	m.level = 0
	m.gateWas = false
}

func (m *adsr) SetSampleRate(rate float64) {
	m.sampleRate = rate
}

func (m *adsr) Params() []ParamInfo {
	return []ParamInfo{
		{ID: "attack", Name: "Attack", Min: 0.001, Max: 10, Default: 0.01, Current: m.attack, Curve: CurveExponential, Hint: HintKnob, Format: FormatTime},
		{ID: "decay", Name: "Decay", Min: 0.001, Max: 10, Default: 0.1, Current: m.decay, Curve: CurveExponential, Hint: HintKnob, Format: FormatTime},
		{ID: "sustain", Name: "Sustain", Min: 0, Max: 10, Default: 7, Current: m.sustain, Curve: CurveLinear, Hint: HintKnob, Format: FormatDecimal},
		{ID: "release", Name: "Release", Min: 0.001, Max: 10, Default: 0.3, Current: m.release, Curve: CurveExponential, Hint: HintKnob, Format: FormatTime},
	}
}

func (m *adsr) SetParam(id string, value float64) error {
	switch id {
	case "attack":
		m.attack = clamp(value, 0.001, 10)
	case "decay":
		m.decay = clamp(value, 0.001, 10)
	case "sustain":
		m.sustain = clamp(value, 0, 10)
	case "release":
		m.release = clamp(value, 0.001, 10)
	default:
		return &ErrUnknownPort{Ref: "adsr#" + id}
	}
	return nil
}

func (m *adsr) GetParam(id string) (float64, error) {
	switch id {
	case "attack":
		return m.attack, nil
	case "decay":
		return m.decay, nil
	case "sustain":
		return m.sustain, nil
	case "release":
		return m.release, nil
	default:
		return 0, &ErrUnknownPort{Ref: "adsr#" + id}
	}
}
