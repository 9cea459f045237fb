package corerack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func Test_Compile_orderIsDeterministicAcrossRecompiles(t *testing.T) {
	r := newTestRegistry()
	p := NewPatch(44100)
	p.SetValidationMode(ValidationNone) // CV feeding an Audio port is mechanically fine; kind rules are tested separately
	require.NoError(t, p.AddNode("e1", mustCreate(t, r, "external_input")))
	require.NoError(t, p.AddNode("vca1", mustCreate(t, r, "vca")))
	require.NoError(t, p.AddNode("svf1", mustCreate(t, r, "svf")))
	require.NoError(t, p.AddNode("out", mustCreate(t, r, "stereo_output")))
	require.NoError(t, p.SetOutput("out"))

	_, err := p.Connect("e1.out", "vca1.in", CableOpts{})
	require.NoError(t, err)
	_, err = p.Connect("vca1.out", "svf1.in", CableOpts{})
	require.NoError(t, err)
	_, err = p.Connect("svf1.low", "out.left", CableOpts{})
	require.NoError(t, err)

	require.NoError(t, p.Compile())
	order1 := make([]string, len(p.plan.order))
	for i, sn := range p.plan.order {
		order1[i] = sn.id
	}

	require.NoError(t, p.Compile())
	order2 := make([]string, len(p.plan.order))
	for i, sn := range p.plan.order {
		order2[i] = sn.id
	}

	assert.Equal(t, order1, order2)
	assert.Equal(t, []string{"e1", "vca1", "svf1", "out"}, order1)
}

func Test_Compile_excludesNodesNotReachableFromSink(t *testing.T) {
	r := newTestRegistry()
	p := NewPatch(44100)
	p.SetValidationMode(ValidationNone) // CV feeding an Audio port is mechanically fine; kind rules are tested separately
	require.NoError(t, p.AddNode("e1", mustCreate(t, r, "external_input")))
	require.NoError(t, p.AddNode("unused", mustCreate(t, r, "noise")))
	require.NoError(t, p.AddNode("out", mustCreate(t, r, "stereo_output")))
	require.NoError(t, p.SetOutput("out"))

	_, err := p.Connect("e1.out", "out.left", CableOpts{})
	require.NoError(t, err)
	require.NoError(t, p.Compile())

	var ids []string
	for _, sn := range p.plan.order {
		ids = append(ids, sn.id)
	}
	assert.NotContains(t, ids, "unused")
	assert.Contains(t, ids, "e1")
	assert.Contains(t, ids, "out")
}

// Test_Compile_tieBreaksByInsertionOrder uses rapid to check that, for any
// set of mutually independent nodes all feeding the sink directly, the
// compiled order always matches AddNode insertion order regardless of the
// order cables were added in.
func Test_Compile_tieBreaksByInsertionOrder(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(rt, "n")
		r := newTestRegistry()
		p := NewPatch(44100)
		p.SetValidationMode(ValidationNone) // CV feeding an Audio port is mechanically fine; kind rules are tested separately
		ids := make([]string, n)
		for i := 0; i < n; i++ {
			ids[i] = "e" + string(rune('a'+i))
			require.NoError(rt, p.AddNode(ids[i], mustCreate(t, r, "external_input")))
		}
		require.NoError(rt, p.AddNode("out", mustCreate(t, r, "stereo_output")))
		require.NoError(rt, p.SetOutput("out"))

		// Connect in a shuffled order - it must not affect the tie-break.
		perm := append([]string(nil), ids...)
		for i := len(perm) - 1; i > 0; i-- {
			j := rapid.IntRange(0, i).Draw(rt, "swap")
			perm[i], perm[j] = perm[j], perm[i]
		}
		for _, id := range perm {
			_, err := p.Connect(id+".out", "out.left", CableOpts{})
			require.NoError(rt, err)
		}

		require.NoError(rt, p.Compile())
		var got []string
		for _, sn := range p.plan.order {
			if sn.id != "out" {
				got = append(got, sn.id)
			}
		}
		assert.Equal(rt, ids, got)
	})
}
