package wstomp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gosuda/wstomp/transport"
)

func TestReassemblerStandaloneFrames(t *testing.T) {
	t.Parallel()

	var r reassembler

	finished := r.ingest(transport.Frame{Kind: transport.Binary, Payload: []byte("abc")})
	require.True(t, finished)
	require.Equal(t, []byte("abc"), r.bytes())

	r.reset()
	finished = r.ingest(transport.Frame{Kind: transport.Text, Payload: []byte("xyz")})
	require.True(t, finished)
	require.Equal(t, []byte("xyz"), r.bytes())
}

func TestReassemblerFragmentSequence(t *testing.T) {
	t.Parallel()

	var r reassembler

	require.False(t, r.ingest(transport.Frame{Kind: transport.FragmentFirst, Payload: []byte("a")}))
	require.False(t, r.ingest(transport.Frame{Kind: transport.FragmentContinue, Payload: []byte("b")}))
	finished := r.ingest(transport.Frame{Kind: transport.FragmentLast, Payload: []byte("c")})
	require.True(t, finished)
	require.Equal(t, []byte("abc"), r.bytes())
}

func TestReassemblerFirstClearsStaleContent(t *testing.T) {
	t.Parallel()

	var r reassembler

	// Undecoded leftovers accumulate until a decode succeeds, but a
	// new fragmented message starts from a clean buffer.
	r.ingest(transport.Frame{Kind: transport.Binary, Payload: []byte("stale")})
	require.False(t, r.ingest(transport.Frame{Kind: transport.FragmentFirst, Payload: []byte("fresh-")}))
	require.True(t, r.ingest(transport.Frame{Kind: transport.FragmentLast, Payload: []byte("end")}))
	require.Equal(t, []byte("fresh-end"), r.bytes())
}

func TestReassemblerAccumulatesAcrossMessages(t *testing.T) {
	t.Parallel()

	var r reassembler

	// Without a reset (no successful decode), standalone messages
	// keep appending so a frame can straddle message boundaries.
	require.True(t, r.ingest(transport.Frame{Kind: transport.Binary, Payload: []byte("part1-")}))
	require.True(t, r.ingest(transport.Frame{Kind: transport.Binary, Payload: []byte("part2")}))
	require.Equal(t, []byte("part1-part2"), r.bytes())
}
