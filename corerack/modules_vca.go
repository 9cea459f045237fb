package corerack

/*------------------------------------------------------------------
 *
 * Purpose:	Voltage-controlled amplifier. Linear or exponential
 *		response, CV-unipolar control input, audio in/out.
 *
 *------------------------------------------------------------------*/

import "math"

type vcaResponse int

const (
	vcaLinear vcaResponse = iota
	vcaExponential
)

type vca struct {
	response vcaResponse
}

func newVCA(sampleRate float64) Module {
	return &vca{response: vcaLinear}
}

var vcaPortSpec = NewPortSpec(
	[]PortDef{
		{Name: "in", Kind: Audio, Default: 0, AttenuverterAllowed: true},
		{Name: "cv", Kind: CvUnipolar, Default: 10, AttenuverterAllowed: true}, // default: full open
	},
	[]PortDef{
		{Name: "out", Kind: Audio},
	},
)

func (m *vca) PortSpec() *PortSpec { return vcaPortSpec }

func (m *vca) Tick(in, out []float64) {
	signal := in[0]
	cv := clamp(in[1]/10, 0, 1) // CvUnipolar 0..10 -> gain 0..1
	var gain float64
	switch m.response {
	case vcaExponential:
		if cv <= 0 {
			gain = 0
		} else {
			gain = math.Exp(cv*math.Log(1000)) / 1000
		}
	default:
		gain = cv
	}
	out[0] = signal * gain
}

func (m *vca) Reset()                   {}
func (m *vca) SetSampleRate(rate float64) {}

func (m *vca) Params() []ParamInfo {
	return []ParamInfo{
		{ID: "response", Name: "Response", Min: 0, Max: 1, Default: 0, Current: float64(m.response), Curve: CurveStepped, Steps: 2, Hint: HintToggle, Format: FormatDecimal},
	}
}

func (m *vca) SetParam(id string, value float64) error {
	if id != "response" {
		return &ErrUnknownPort{Ref: "vca#" + id}
	}
	m.response = vcaResponse(clamp(value, 0, 1))
	return nil
}

func (m *vca) GetParam(id string) (float64, error) {
	if id != "response" {
		return 0, &ErrUnknownPort{Ref: "vca#" + id}
	}
	return float64(m.response), nil
}
