package corerack

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DumpSink_writesScopeSamplesToFile(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewDumpSink(dir, "scope-%Y%m%d-%H%M%S.raw")
	require.NoError(t, err)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	v := ObservableValue{Type: TargetScope, NodeID: "vco1", PortID: "out", Samples: []float32{1, 2, 3}}
	require.NoError(t, sink.Write(v, at))

	data, err := os.ReadFile(filepath.Join(dir, "scope-20260102-030405.raw"))
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", string(data))
}

func Test_DumpSink_ignoresNonBufferKinds(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewDumpSink(dir, "x-%H%M%S.raw")
	require.NoError(t, err)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, sink.Write(ObservableValue{Type: TargetParam, Value: 1}, at))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
