package codec

import (
	"bytes"
	"testing"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/stretchr/testify/require"
)

func encodeFrame(t *testing.T, f *frame.Frame) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, frame.NewWriter(&buf).Write(f))
	return buf.Bytes()
}

func TestDecodeCompleteFrame(t *testing.T) {
	t.Parallel()

	in := frame.New(frame.MESSAGE,
		frame.Destination, "/queue/a",
		frame.MessageId, "m-1",
		frame.Subscription, "s-1",
	)
	in.Body = []byte("hello")

	out, err := Decode(encodeFrame(t, in))
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Equal(t, frame.MESSAGE, out.Command)
	require.Equal(t, "/queue/a", out.Header.Get(frame.Destination))
	require.Equal(t, []byte("hello"), out.Body)
}

func TestDecodeIncomplete(t *testing.T) {
	t.Parallel()

	full := encodeFrame(t, frame.New(frame.MESSAGE, frame.Destination, "/queue/a"))
	_, err := Decode(full[:len(full)/2])
	require.ErrorIs(t, err, ErrIncomplete)
}

func TestDecodeEmptyIsIncomplete(t *testing.T) {
	t.Parallel()

	_, err := Decode(nil)
	require.ErrorIs(t, err, ErrIncomplete)
}

func TestDecodeMalformed(t *testing.T) {
	t.Parallel()

	// Header line without a colon.
	_, err := Decode([]byte("MESSAGE\nnot-a-header\n\n\x00"))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrIncomplete)
}

func TestDecodeHeartbeatOnly(t *testing.T) {
	t.Parallel()

	f, err := Decode([]byte("\n"))
	require.NoError(t, err)
	require.Nil(t, f)

	f, err = Decode([]byte("\n\n\n"))
	require.NoError(t, err)
	require.Nil(t, f)
}

func TestDecodeHeartbeatThenFrame(t *testing.T) {
	t.Parallel()

	data := append([]byte("\n"), encodeFrame(t, frame.New(frame.CONNECTED, frame.Version, "1.2"))...)
	f, err := Decode(data)
	require.NoError(t, err)
	require.NotNil(t, f)
	require.Equal(t, frame.CONNECTED, f.Command)
}

func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	in := frame.New(frame.SEND, frame.Destination, "/queue/out")
	in.Body = []byte("payload")

	var buf bytes.Buffer
	require.NoError(t, Encode(in, &buf))

	out, err := Decode(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, frame.SEND, out.Command)
	require.Equal(t, []byte("payload"), out.Body)
}

func TestEncodeRejectsBadFrames(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.Error(t, Encode(nil, &buf))
	require.Error(t, Encode(frame.New(""), &buf))
	require.Error(t, Encode(frame.New("BAD\nCOMMAND"), &buf))
	require.Zero(t, buf.Len())
}
