package corerack

/*------------------------------------------------------------------
 *
 * Purpose:	Per-subscription accumulators for the state observer:
 *		windowed RMS/peak (Level), hysteresis (Gate), a ring
 *		buffer (Scope), and a Hann-windowed DFT (Spectrum).
 *
 *------------------------------------------------------------------*/

import "math"

func amplitudeToDb(a float64) float64 {
	if a <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(a)
}

// levelAccumulator tracks RMS and peak over a sliding window of the last
// N samples (default ~128 samples, ~3ms at 44.1kHz).
type levelAccumulator struct {
	window     []float64
	idx        int
	filled     bool
	sumSquares float64
}

func newLevelAccumulator(size int) *levelAccumulator {
	return &levelAccumulator{window: make([]float64, size)}
}

func (a *levelAccumulator) push(v float64) {
	old := a.window[a.idx]
	a.sumSquares += v*v - old*old
	a.window[a.idx] = v
	a.idx++
	if a.idx == len(a.window) {
		a.idx = 0
		a.filled = true
	}
}

func (a *levelAccumulator) ready() bool { return a.filled }

func (a *levelAccumulator) rmsDb() float64 {
	rms := math.Sqrt(a.sumSquares / float64(len(a.window)))
	return amplitudeToDb(rms)
}

func (a *levelAccumulator) peakDb() float64 {
	peak := 0.0
	for _, s := range a.window {
		if m := math.Abs(s); m > peak {
			peak = m
		}
	}
	return amplitudeToDb(peak)
}

// gateAccumulator applies a hysteresis threshold: active above 2.5V,
// inactive below 0.5V.
type gateAccumulator struct {
	active bool
}

func (a *gateAccumulator) push(v float64) bool {
	if !a.active && v > 2.5 {
		a.active = true
	} else if a.active && v < 0.5 {
		a.active = false
	}
	return a.active
}

// scopeAccumulator is a ring buffer of the most recent N samples.
type scopeAccumulator struct {
	buf    []float32
	idx    int
	filled bool
}

func newScopeAccumulator(size int) *scopeAccumulator {
	return &scopeAccumulator{buf: make([]float32, size)}
}

func (a *scopeAccumulator) push(v float64) {
	a.buf[a.idx] = float32(v)
	a.idx++
	if a.idx == len(a.buf) {
		a.idx = 0
		a.filled = true
	}
}

// snapshot returns the buffer in chronological (oldest-first) order.
func (a *scopeAccumulator) snapshot() []float32 {
	if !a.filled {
		out := make([]float32, a.idx)
		copy(out, a.buf[:a.idx])
		return out
	}
	n := len(a.buf)
	out := make([]float32, n)
	copy(out, a.buf[a.idx:])
	copy(out[n-a.idx:], a.buf[:a.idx])
	return out
}

// spectrumAccumulator computes a Hann-windowed magnitude spectrum (in dB)
// over the most recent fftSize samples via a direct DFT.
type spectrumAccumulator struct {
	buf    []float64
	idx    int
	filled bool
}

func newSpectrumAccumulator(fftSize int) *spectrumAccumulator {
	return &spectrumAccumulator{buf: make([]float64, fftSize)}
}

func (a *spectrumAccumulator) push(v float64) {
	a.buf[a.idx] = v
	a.idx++
	if a.idx == len(a.buf) {
		a.idx = 0
		a.filled = true
	}
}

func (a *spectrumAccumulator) ordered() []float64 {
	n := len(a.buf)
	if !a.filled {
		out := make([]float64, a.idx)
		copy(out, a.buf[:a.idx])
		return out
	}
	out := make([]float64, n)
	copy(out, a.buf[a.idx:])
	copy(out[n-a.idx:], a.buf[:a.idx])
	return out
}

func (a *spectrumAccumulator) compute(sampleRate float64) (bins []float32, freqRange [2]float64) {
	samples := a.ordered()
	n := len(samples)
	freqRange = [2]float64{0, sampleRate / 2}
	if n < 2 {
		return nil, freqRange
	}

	windowed := make([]float64, n)
	for i, s := range samples {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		windowed[i] = s * w
	}

	bins = make([]float32, n/2)
	for k := 0; k < n/2; k++ {
		var re, im float64
		for i, s := range windowed {
			angle := -2 * math.Pi * float64(k) * float64(i) / float64(n)
			re += s * math.Cos(angle)
			im += s * math.Sin(angle)
		}
		mag := math.Hypot(re, im) / float64(n)
		bins[k] = float32(amplitudeToDb(mag))
	}
	return bins, freqRange
}
