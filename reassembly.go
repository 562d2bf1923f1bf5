package wstomp

import (
	"bytes"

	"github.com/gosuda/wstomp/transport"
)

// reassembler accumulates WebSocket payload fragments into complete
// buffers ready for STOMP decoding. The buffer survives across
// finished messages until a decode succeeds, so a STOMP frame may
// straddle WebSocket message boundaries when retrying is enabled.
type reassembler struct {
	buf bytes.Buffer
}

// ingest folds one data or fragment frame into the buffer and reports
// whether a WebSocket message boundary was reached. Control frames
// must not be passed here.
func (r *reassembler) ingest(f transport.Frame) (finished bool) {
	switch f.Kind {
	case transport.Text, transport.Binary:
		r.buf.Write(f.Payload)
		return true
	case transport.FragmentFirst:
		r.buf.Reset()
		r.buf.Write(f.Payload)
		return false
	case transport.FragmentContinue:
		r.buf.Write(f.Payload)
		return false
	case transport.FragmentLast:
		r.buf.Write(f.Payload)
		return true
	}
	return false
}

// bytes returns the accumulated payload. Valid until the next ingest
// or reset.
func (r *reassembler) bytes() []byte { return r.buf.Bytes() }

// reset clears the buffer after a successful decode.
func (r *reassembler) reset() { r.buf.Reset() }
