package corerack

/*------------------------------------------------------------------
 *
 * Purpose:	Signal-kind enum and the pairwise compatibility rules
 *		consulted at cable-connect time.
 *
 * Description:	Hardware-modular-synth voltage conventions: Audio is
 *		bipolar around 0V nominally +-5; CvUnipolar/CvBipolar are
 *		control voltages; VoltPerOctave encodes pitch; Gate/Trigger/
 *		Clock are logic-level timing signals. Values are plain
 *		float64 volts throughout - nothing in the type system
 *		enforces the convention, only the compatibility table does.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"math"
)

// SignalKind is the closed set of port/cable signal conventions.
type SignalKind int

const (
	Audio SignalKind = iota
	CvBipolar
	CvUnipolar
	VoltPerOctave
	Gate
	Trigger
	Clock
)

func (k SignalKind) String() string {
	switch k {
	case Audio:
		return "Audio"
	case CvBipolar:
		return "CvBipolar"
	case CvUnipolar:
		return "CvUnipolar"
	case VoltPerOctave:
		return "VoltPerOctave"
	case Gate:
		return "Gate"
	case Trigger:
		return "Trigger"
	case Clock:
		return "Clock"
	default:
		return fmt.Sprintf("SignalKind(%d)", int(k))
	}
}

// Compatibility is the outcome of checking a (source, destination) pair of
// signal kinds.
type Compatibility int

const (
	Exact Compatibility = iota
	Allowed
	WarningCompat
	Incompatible
)

func (c Compatibility) String() string {
	switch c {
	case Exact:
		return "Exact"
	case Allowed:
		return "Allowed"
	case WarningCompat:
		return "Warning"
	case Incompatible:
		return "Incompatible"
	default:
		return fmt.Sprintf("Compatibility(%d)", int(c))
	}
}

// CompatibilityResult is the compatibility level plus, for WarningCompat, a
// human-readable explanation suitable for logging under ValidationWarn.
type CompatibilityResult struct {
	Level   Compatibility
	Message string
}

// CheckCompatibility computes the compatibility of routing a cable from a
// source output of kind `from` into a destination input of kind `to`.
func CheckCompatibility(from, to SignalKind) CompatibilityResult {
	if from == to {
		return CompatibilityResult{Level: Exact}
	}

	// Audio may route to any destination without complaint - it is the
	// widest-range, most generic kind.
	if from == Audio {
		return CompatibilityResult{Level: Allowed}
	}

	switch {
	case from == CvBipolar && to == CvUnipolar:
		return CompatibilityResult{Level: Allowed}
	case from == CvUnipolar && to == CvBipolar:
		return CompatibilityResult{Level: Allowed}
	case from == VoltPerOctave && (to == CvBipolar || to == CvUnipolar):
		return CompatibilityResult{Level: Allowed}
	case from == Gate && to == Trigger:
		return CompatibilityResult{Level: Allowed}
	case from == Trigger && to == Gate:
		return CompatibilityResult{Level: Allowed}
	case from == Clock && (to == Gate || to == Trigger):
		return CompatibilityResult{Level: Allowed}
	}

	// Semantically questionable, but not nonsensical: these still produce
	// a well-defined voltage at the destination.
	switch {
	case (from == Gate || from == Trigger || from == Clock) && to == Audio:
		return CompatibilityResult{
			Level:   WarningCompat,
			Message: fmt.Sprintf("%s into an audio input will sound like a buzz, not a tone", from),
		}
	case from == CvBipolar && to == VoltPerOctave:
		return CompatibilityResult{
			Level:   WarningCompat,
			Message: "CV-bipolar driving a V/Oct input reinterprets volts as pitch",
		}
	case from == CvUnipolar && to == VoltPerOctave:
		return CompatibilityResult{
			Level:   WarningCompat,
			Message: "CV-unipolar driving a V/Oct input reinterprets volts as pitch, and never goes negative",
		}
	case (from == Gate || from == Trigger || from == Clock) && (to == CvBipolar || to == CvUnipolar):
		return CompatibilityResult{
			Level:   WarningCompat,
			Message: fmt.Sprintf("%s into a CV input only ever contributes 0V or 5V", from),
		}
	}

	return CompatibilityResult{Level: Incompatible}
}

// ValidationMode controls how aggressively Connect enforces the
// compatibility table.
type ValidationMode int

const (
	ValidationWarn ValidationMode = iota // default: log on Warning, fail only on Incompatible
	ValidationStrict                     // fail on Warning or Incompatible
	ValidationNone                       // no checking at all
)

func (m ValidationMode) String() string {
	switch m {
	case ValidationWarn:
		return "warn"
	case ValidationStrict:
		return "strict"
	case ValidationNone:
		return "none"
	default:
		return fmt.Sprintf("ValidationMode(%d)", int(m))
	}
}

// MiddleCFrequency is 0V on the V/Oct convention: MIDI note 60, C4.
const MiddleCFrequency = 261.63

// VoltsToFrequency converts a V/Oct voltage to a frequency in Hz, per
// f = 261.63 * 2^V, with 0V = C4.
func VoltsToFrequency(volts float64) float64 {
	return MiddleCFrequency * math.Pow(2, volts)
}

// FrequencyToVolts is the inverse of VoltsToFrequency.
func FrequencyToVolts(hz float64) float64 {
	return math.Log2(hz/MiddleCFrequency) * 1
}
