package corerack

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSineEnginePatch(t *testing.T) *Patch {
	t.Helper()
	r := newTestRegistry()
	p := NewPatch(44100)
	require.NoError(t, p.AddNode("vco1", mustCreate(t, r, "vco")))
	require.NoError(t, p.AddNode("out", mustCreate(t, r, "stereo_output")))
	require.NoError(t, p.SetOutput("out"))
	_, err := p.Connect("vco1.out", "out.left", CableOpts{})
	require.NoError(t, err)
	require.NoError(t, p.Compile())
	return p
}

func Test_ProcessBlock_equivalentToSequentialTicks(t *testing.T) {
	p1 := newSineEnginePatch(t)
	p2 := newSineEnginePatch(t)

	const n = 64
	block, err := p1.ProcessBlock(n, nil)
	require.NoError(t, err)
	require.Len(t, block, 2*n)

	for i := 0; i < n; i++ {
		left, right, err := p2.Tick()
		require.NoError(t, err)
		assert.InDelta(t, left, float64(block[2*i]), 1e-5)
		assert.InDelta(t, right, float64(block[2*i+1]), 1e-5)
	}
}

func Test_ProcessBlock_failsWhenNotCompiled(t *testing.T) {
	p := NewPatch(44100)
	_, err := p.ProcessBlock(10, nil)
	assert.ErrorIs(t, err, ErrNotCompiled)
}

func Test_Tick_failsWhenNotCompiled(t *testing.T) {
	p := NewPatch(44100)
	_, _, err := p.Tick()
	assert.ErrorIs(t, err, ErrNotCompiled)
}

func Test_Tick_vcoProducesBoundedSamples(t *testing.T) {
	p := newSineEnginePatch(t)
	var maxAbs float64
	for i := 0; i < 4410; i++ {
		left, _, err := p.Tick()
		require.NoError(t, err)
		if m := math.Abs(left); m > maxAbs {
			maxAbs = m
		}
	}
	assert.LessOrEqual(t, maxAbs, 5.0+1e-9)
	assert.Greater(t, maxAbs, 4.0, "a middle-C sine should swing close to its 5V peak within 0.1s")
}

func Test_Tick_isDeterministicGivenIdenticalTopology(t *testing.T) {
	p1 := newSineEnginePatch(t)
	p2 := newSineEnginePatch(t)

	for i := 0; i < 1000; i++ {
		l1, r1, err := p1.Tick()
		require.NoError(t, err)
		l2, r2, err := p2.Tick()
		require.NoError(t, err)
		assert.Equal(t, l1, l2)
		assert.Equal(t, r1, r2)
	}
}
