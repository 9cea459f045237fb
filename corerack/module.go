package corerack

/*------------------------------------------------------------------
 *
 * Purpose:	The polymorphic module contract.
 *
 * Description:	Every module variant - built-in or registered by an
 *		embedder - satisfies Module. Tick is the only method
 *		called from the render hot path; it must not allocate
 *		and must be a pure function of its input view, the
 *		module's internal state, and the sample rate.
 *
 *------------------------------------------------------------------*/

// Module is the capability set every node's polymorphic state must
// support: declare its port spec, process one sample, clear internal
// state, and react to a sample-rate change.
type Module interface {
	// PortSpec returns the module type's immutable, ordered port spec.
	PortSpec() *PortSpec

	// Tick reads exactly len(PortSpec().Inputs) prepared input values from
	// in and writes exactly len(PortSpec().Outputs) values to out, for one
	// sample. It must not allocate and must be deterministic given
	// identical in, internal state, and sample rate.
	Tick(in, out []float64)

	// Reset clears internal state (filter history, envelope phase,
	// oscillator phase, ...) without touching the port spec or topology.
	Reset()

	// SetSampleRate propagates a new sample rate, e.g. to recompute
	// filter coefficients or phase increments.
	SetSampleRate(rate float64)
}

// unitDelayModule is implemented by the dedicated unit-delay module type;
// the compiler uses it to identify which input edges are allowed to close
// a feedback cycle.
type unitDelayModule interface {
	isUnitDelay()
}

// ParamCurve describes how a parameter's raw value maps to a perceptual
// control range, for UI hosts; the tick path never consults it.
type ParamCurve int

const (
	CurveLinear ParamCurve = iota
	CurveExponential
	CurveLogarithmic
	CurveStepped
)

// ControlHint suggests a UI widget for a parameter.
type ControlHint int

const (
	HintKnob ControlHint = iota
	HintSlider
	HintToggle
	HintSelect
)

// ParamFormat suggests a display format for a parameter's current value.
type ParamFormat int

const (
	FormatDecimal ParamFormat = iota
	FormatFrequency
	FormatTime
	FormatDecibels
	FormatPercent
	FormatNoteName
	FormatRatio
)

// ParamInfo describes one control-plane-visible parameter of a module that
// opts into introspection.
type ParamInfo struct {
	ID      string
	Name    string
	Min     float64
	Max     float64
	Default float64
	Current float64
	Curve   ParamCurve
	Hint    ControlHint
	Format  ParamFormat
	// Steps is only meaningful when Curve == CurveStepped.
	Steps int
}

// Introspectable is an optional capability: modules with control-plane
// parameters beyond their cabled ports (e.g. a filter resonance knob)
// implement it so the facade can list and drive them. It is never
// consulted from the tick path.
type Introspectable interface {
	Params() []ParamInfo
	SetParam(id string, value float64) error
	GetParam(id string) (float64, error)
}
