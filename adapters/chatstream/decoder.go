package chatstream

import (
	"bytes"
	"encoding/json"
	"errors"
)

// DefaultMaxBuffer bounds how much undecodable data a Decoder keeps while
// waiting for a split frame to complete.
const DefaultMaxBuffer = 1 << 20

var ErrBufferOverflow = errors.New("chatstream: unterminated frame exceeds buffer limit")

// Decoder turns raw relay bytes into content deltas. It is fed with Write as
// bytes arrive and finished with Flush. A Decoder is not safe for concurrent
// use; each stream owns one.
type Decoder struct {
	onDelta   func(string)
	buf       []byte
	done      bool
	maxBuffer int
}

func NewDecoder(onDelta func(string)) *Decoder {
	return &Decoder{onDelta: onDelta, maxBuffer: DefaultMaxBuffer}
}

// SetMaxBuffer changes the buffer ceiling; n <= 0 disables it.
func (d *Decoder) SetMaxBuffer(n int) {
	d.maxBuffer = n
}

// Done reports whether the sentinel frame has been seen.
func (d *Decoder) Done() bool {
	return d.done
}

// Buffered returns the number of bytes held for later frames.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Write consumes every complete line in the buffer. A data line whose JSON
// does not parse stays at the front of the buffer and decoding pauses until
// the next Write. After the sentinel everything is discarded.
func (d *Decoder) Write(p []byte) (int, error) {
	if d.done {
		return len(p), nil
	}
	d.buf = append(d.buf, p...)

	for {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			break
		}
		payload, ok := framePayload(d.buf[:i])
		if !ok {
			d.buf = d.buf[i+1:]
			continue
		}
		if string(payload) == Sentinel {
			d.done = true
			d.buf = nil
			return len(p), nil
		}
		if !json.Valid(payload) {
			break
		}
		d.buf = d.buf[i+1:]
		d.emit(payload)
	}

	if d.maxBuffer > 0 && len(d.buf) > d.maxBuffer {
		return len(p), ErrBufferOverflow
	}
	return len(p), nil
}

// Flush makes a last pass over whatever is still buffered. No more data is
// coming, so malformed frames are dropped instead of kept.
func (d *Decoder) Flush() {
	if d.done || len(d.buf) == 0 {
		d.buf = nil
		return
	}
	rest := d.buf
	d.buf = nil

	for _, line := range bytes.Split(rest, []byte{'\n'}) {
		payload, ok := framePayload(line)
		if !ok || string(payload) == Sentinel {
			continue
		}
		if !json.Valid(payload) {
			continue
		}
		d.emit(payload)
	}
}

func (d *Decoder) emit(payload []byte) {
	var frame deltaFrame
	// Valid JSON of an unexpected shape carries no delta.
	if err := json.Unmarshal(payload, &frame); err != nil {
		return
	}
	if len(frame.Choices) == 0 {
		return
	}
	if content := frame.Choices[0].Delta.Content; content != "" && d.onDelta != nil {
		d.onDelta(content)
	}
}

// framePayload returns the trimmed payload of a data line. Comments, blank
// lines and other fields report false.
func framePayload(line []byte) ([]byte, bool) {
	line = bytes.TrimSuffix(line, []byte{'\r'})
	if len(line) == 0 || line[0] == ':' || len(bytes.TrimSpace(line)) == 0 {
		return nil, false
	}
	if !bytes.HasPrefix(line, []byte(DataPrefix)) {
		return nil, false
	}
	return bytes.TrimSpace(line[len(DataPrefix):]), true
}
