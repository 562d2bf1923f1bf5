// Package codec adapts the go-stomp frame reader/writer to the
// three-outcome vocabulary the wstomp session works with: a decoded
// frame, "not enough data", or a hard decode error.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-stomp/stomp/v3/frame"
)

// ErrIncomplete reports that the buffer ends before a full STOMP frame.
var ErrIncomplete = errors.New("wstomp: incomplete STOMP frame")

// Decode parses a single STOMP frame from data.
//
// Outcomes:
//   - (f, nil): one complete frame. The caller clears its buffer; any
//     trailing bytes are discarded with it.
//   - (nil, nil): data held only heartbeat newlines. The caller clears
//     its buffer and emits nothing.
//   - (nil, ErrIncomplete): data ends mid-frame.
//   - (nil, err): malformed frame.
func Decode(data []byte) (*frame.Frame, error) {
	r := frame.NewReader(bytes.NewReader(data))
	heartbeat := false
	for {
		f, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				if heartbeat {
					return nil, nil
				}
				return nil, ErrIncomplete
			}
			return nil, err
		}
		if f == nil {
			// go-stomp reports a bare heartbeat newline as a nil frame.
			heartbeat = true
			continue
		}
		return f, nil
	}
}

// Encode appends the wire form of f to buf. On success buf holds the
// bytes for exactly one WebSocket Binary frame; on failure buf is left
// untouched and the frame should be dropped.
func Encode(f *frame.Frame, buf *bytes.Buffer) error {
	if f == nil {
		return fmt.Errorf("wstomp: cannot encode nil frame")
	}
	if f.Command == "" {
		return fmt.Errorf("wstomp: cannot encode frame with empty command")
	}
	if strings.ContainsAny(f.Command, "\r\n:") {
		return fmt.Errorf("wstomp: invalid command %q", f.Command)
	}
	return frame.NewWriter(buf).Write(f)
}
