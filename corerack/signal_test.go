package corerack

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_CheckCompatibility_exactAndAudio(t *testing.T) {
	assert.Equal(t, Exact, CheckCompatibility(Gate, Gate).Level)
	assert.Equal(t, Allowed, CheckCompatibility(Audio, Gate).Level)
	assert.Equal(t, Allowed, CheckCompatibility(Audio, VoltPerOctave).Level)
}

func Test_CheckCompatibility_cvAndVoct(t *testing.T) {
	assert.Equal(t, Allowed, CheckCompatibility(CvBipolar, CvUnipolar).Level)
	assert.Equal(t, Allowed, CheckCompatibility(CvUnipolar, CvBipolar).Level)
	assert.Equal(t, Allowed, CheckCompatibility(VoltPerOctave, CvBipolar).Level)
	assert.Equal(t, Allowed, CheckCompatibility(VoltPerOctave, CvUnipolar).Level)
}

func Test_CheckCompatibility_gateTriggerClock(t *testing.T) {
	assert.Equal(t, Allowed, CheckCompatibility(Gate, Trigger).Level)
	assert.Equal(t, Allowed, CheckCompatibility(Trigger, Gate).Level)
	assert.Equal(t, Allowed, CheckCompatibility(Clock, Gate).Level)
	assert.Equal(t, Allowed, CheckCompatibility(Clock, Trigger).Level)
}

func Test_CheckCompatibility_warnings(t *testing.T) {
	r := CheckCompatibility(Gate, Audio)
	assert.Equal(t, WarningCompat, r.Level)
	assert.NotEmpty(t, r.Message)

	r = CheckCompatibility(CvBipolar, VoltPerOctave)
	assert.Equal(t, WarningCompat, r.Level)
}

func Test_CheckCompatibility_incompatible(t *testing.T) {
	assert.Equal(t, Incompatible, CheckCompatibility(VoltPerOctave, Gate).Level)
	assert.Equal(t, Incompatible, CheckCompatibility(Clock, VoltPerOctave).Level)
}

func Test_VoltsToFrequency(t *testing.T) {
	assert.InDelta(t, 261.63, VoltsToFrequency(0), 0.01)
	assert.InDelta(t, 523.25, VoltsToFrequency(1), 0.01)
	assert.InDelta(t, 130.81, VoltsToFrequency(-1), 0.01)
}

func Test_FrequencyToVolts_roundTrips(t *testing.T) {
	for _, v := range []float64{-2, -1, 0, 0.5, 1, 2} {
		hz := VoltsToFrequency(v)
		back := FrequencyToVolts(hz)
		assert.True(t, math.Abs(back-v) < 1e-9)
	}
}
