package corerack

/*------------------------------------------------------------------
 *
 * Purpose:	Port definitions and the immutable port spec every
 *		module type declares.
 *
 * Description:	A PortSpec's input/output orderings are observable -
 *		the state observer and the telemetry bridge use them as
 *		stable integer ids, so a module type must never reorder
 *		its own ports across versions.
 *
 *------------------------------------------------------------------*/

import "fmt"

// PortDef describes one named input or output of a module type.
type PortDef struct {
	Name                string
	Kind                SignalKind
	Default             float64
	AttenuverterAllowed bool
	// NormalledTo names a sibling port on the same module (input or
	// output) whose value this input adopts when it has no incoming
	// cable. A sibling input declared earlier gives its value for this
	// sample; one declared later gives its Default; a sibling output
	// gives that output's most recently written (previous-sample) value.
	// Only meaningful on inputs; empty means "use Default instead".
	NormalledTo string
}

// PortSpec is the immutable, ordered set of a module type's inputs and
// outputs, built once at registration time via NewPortSpec.
type PortSpec struct {
	Inputs  []PortDef
	Outputs []PortDef

	inputIndex  map[string]int
	outputIndex map[string]int
}

// NewPortSpec builds a PortSpec and its name->index lookup tables. It
// panics on a duplicate port name within inputs or within outputs, since
// that is a programming error in a module type's declaration, not a
// runtime condition callers should be handling.
func NewPortSpec(inputs, outputs []PortDef) *PortSpec {
	spec := &PortSpec{
		Inputs:      inputs,
		Outputs:     outputs,
		inputIndex:  make(map[string]int, len(inputs)),
		outputIndex: make(map[string]int, len(outputs)),
	}
	for i, p := range inputs {
		if _, dup := spec.inputIndex[p.Name]; dup {
			panic(fmt.Sprintf("corerack: duplicate input port name %q", p.Name))
		}
		spec.inputIndex[p.Name] = i
	}
	for i, p := range outputs {
		if _, dup := spec.outputIndex[p.Name]; dup {
			panic(fmt.Sprintf("corerack: duplicate output port name %q", p.Name))
		}
		spec.outputIndex[p.Name] = i
	}
	return spec
}

// InputIndex returns the stable integer id of an input port by name.
func (s *PortSpec) InputIndex(name string) (int, bool) {
	i, ok := s.inputIndex[name]
	return i, ok
}

// OutputIndex returns the stable integer id of an output port by name.
func (s *PortSpec) OutputIndex(name string) (int, bool) {
	i, ok := s.outputIndex[name]
	return i, ok
}

// Input returns an input port's definition by name.
func (s *PortSpec) Input(name string) (PortDef, bool) {
	i, ok := s.inputIndex[name]
	if !ok {
		return PortDef{}, false
	}
	return s.Inputs[i], true
}

// Output returns an output port's definition by name.
func (s *PortSpec) Output(name string) (PortDef, bool) {
	i, ok := s.outputIndex[name]
	if !ok {
		return PortDef{}, false
	}
	return s.Outputs[i], true
}

// HasAudioIn reports whether any input port carries Audio.
func (s *PortSpec) HasAudioIn() bool {
	for _, p := range s.Inputs {
		if p.Kind == Audio {
			return true
		}
	}
	return false
}

// HasAudioOut reports whether any output port carries Audio.
func (s *PortSpec) HasAudioOut() bool {
	for _, p := range s.Outputs {
		if p.Kind == Audio {
			return true
		}
	}
	return false
}
