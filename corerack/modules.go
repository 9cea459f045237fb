package corerack

/*------------------------------------------------------------------
 *
 * Purpose:	Registers the built-in module catalog described in
 *		SPEC_FULL.md's Supplemented Features section.
 *
 *------------------------------------------------------------------*/

// RegisterBuiltins registers every built-in module type into r. Panics on
// a duplicate registration, which would only happen if called twice on
// the same registry - a programming error.
func RegisterBuiltins(r *Registry) {
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	must(r.Register(CatalogEntry{
		TypeID: "vco", Name: "VCO", Category: "Oscillators",
		Description: "Voltage-controlled oscillator with sine, saw, square, and triangle waveforms",
		Keywords:    []string{"oscillator", "pitch", "tone", "waveform"},
		Ports:       describePorts(vcoPortSpec),
	}, newVCO))

	must(r.Register(CatalogEntry{
		TypeID: "lfo", Name: "LFO", Category: "Oscillators",
		Description: "Low-frequency oscillator for modulation",
		Keywords:    []string{"oscillator", "modulation", "slow", "cycle"},
		Ports:       describePorts(lfoPortSpec),
	}, newLFO))

	must(r.Register(CatalogEntry{
		TypeID: "noise", Name: "Noise", Category: "Oscillators",
		Description: "White noise source",
		Keywords:    []string{"noise", "random", "hiss"},
		Ports:       describePorts(noisePortSpec),
	}, newNoise))

	must(r.Register(CatalogEntry{
		TypeID: "vca", Name: "VCA", Category: "Amplifiers",
		Description: "Voltage-controlled amplifier, linear or exponential response",
		Keywords:    []string{"amplifier", "gain", "volume", "level"},
		Ports:       describePorts(vcaPortSpec),
	}, newVCA))

	must(r.Register(CatalogEntry{
		TypeID: "mixer", Name: "Mixer", Category: "Amplifiers",
		Description: "Four-input summing mixer with a per-input level control",
		Keywords:    []string{"mix", "sum", "combine", "level"},
		Ports:       describePorts(mixerPortSpec),
	}, newMixer))

	must(r.Register(CatalogEntry{
		TypeID: "svf", Name: "State Variable Filter", Category: "Filters",
		Description: "Multimode filter with simultaneous low-pass, high-pass, and band-pass outputs",
		Keywords:    []string{"filter", "cutoff", "resonance", "lowpass", "highpass", "bandpass"},
		Ports:       describePorts(svfPortSpec),
	}, newSVF))

	must(r.Register(CatalogEntry{
		TypeID: "adsr", Name: "ADSR Envelope", Category: "Modulators",
		Description: "Attack/decay/sustain/release envelope generator",
		Keywords:    []string{"envelope", "gate", "contour"},
		Ports:       describePorts(adsrPortSpec),
	}, newADSR))

	must(r.Register(CatalogEntry{
		TypeID: "unit_delay", Name: "Unit Delay", Category: "Utility",
		Description: "One-sample delay; the only way to close a feedback loop",
		Keywords:    []string{"delay", "feedback", "loop", "z-1"},
		Ports:       describePorts(unitDelayPortSpec),
	}, newUnitDelay))

	must(r.Register(CatalogEntry{
		TypeID: "external_input", Name: "External Input", Category: "Utility",
		Description: "Atomic-backed bridge for control-thread-written values (MIDI V/Oct, gate, CC)",
		Keywords:    []string{"midi", "external", "input", "bridge", "cv"},
		Ports:       describePorts(externalInputPortSpec),
	}, newExternalInput))

	must(r.Register(CatalogEntry{
		TypeID: "stereo_output", Name: "Stereo Output", Category: "Utility",
		Description: "Patch sink; right is normalled to left for dual-mono output",
		Keywords:    []string{"output", "sink", "master", "stereo"},
		Ports:       describePorts(stereoOutputPortSpec),
	}, newStereoOutput))
}
