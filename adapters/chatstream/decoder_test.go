package chatstream

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func frame(content string) string {
	var buf bytes.Buffer
	_ = NewWriter(&buf).WriteDelta(content)
	return buf.String()
}

const doneFrame = "data: [DONE]\n\n"

type collector struct {
	deltas []string
}

func (c *collector) add(s string) { c.deltas = append(c.deltas, s) }

func (c *collector) text() string { return strings.Join(c.deltas, "") }

func TestDecoder_ConcatenatesDeltasInOrder(t *testing.T) {
	contents := []string{"Привет", ", ", "мир", "! ", "emoji 🚀", `"quoted" \ back`}
	var stream strings.Builder
	for _, c := range contents {
		stream.WriteString(frame(c))
	}
	stream.WriteString(doneFrame)

	var col collector
	dec := NewDecoder(col.add)
	if _, err := dec.Write([]byte(stream.String())); err != nil {
		t.Fatalf("Write: %v", err)
	}
	dec.Flush()

	if !dec.Done() {
		t.Error("expected decoder to have seen the sentinel")
	}
	if len(col.deltas) != len(contents) {
		t.Fatalf("got %d deltas, want %d", len(col.deltas), len(contents))
	}
	for i := range contents {
		if col.deltas[i] != contents[i] {
			t.Errorf("delta %d = %q, want %q", i, col.deltas[i], contents[i])
		}
	}
}

func TestDecoder_SplitAtEveryByteBoundary(t *testing.T) {
	stream := frame("Hel") + frame("lo, ") + frame("мир 🚀") + doneFrame
	want := "Hello, мир 🚀"

	for cut := 0; cut <= len(stream); cut++ {
		var col collector
		dec := NewDecoder(col.add)
		if _, err := dec.Write([]byte(stream[:cut])); err != nil {
			t.Fatalf("cut %d: first write: %v", cut, err)
		}
		if _, err := dec.Write([]byte(stream[cut:])); err != nil {
			t.Fatalf("cut %d: second write: %v", cut, err)
		}
		dec.Flush()

		if got := col.text(); got != want {
			t.Errorf("cut %d: got %q, want %q", cut, got, want)
		}
	}
}

func TestDecoder_OneByteAtATime(t *testing.T) {
	stream := frame("a") + ": keep-alive\n\n" + frame("b") + "event: ping\n" + frame("c") + doneFrame

	var col collector
	dec := NewDecoder(col.add)
	for i := 0; i < len(stream); i++ {
		if _, err := dec.Write([]byte{stream[i]}); err != nil {
			t.Fatalf("byte %d: %v", i, err)
		}
	}
	dec.Flush()

	if got := col.text(); got != "abc" {
		t.Errorf("got %q, want %q", got, "abc")
	}
}

func TestDecoder_ZeroFrames(t *testing.T) {
	var col collector
	dec := NewDecoder(col.add)
	_, _ = dec.Write([]byte(doneFrame))
	dec.Flush()

	if len(col.deltas) != 0 {
		t.Errorf("expected no deltas, got %v", col.deltas)
	}
}

func TestDecoder_DiscardsDataAfterSentinel(t *testing.T) {
	var col collector
	dec := NewDecoder(col.add)
	_, _ = dec.Write([]byte(frame("kept") + doneFrame + frame("dropped")))
	_, _ = dec.Write([]byte(frame("also dropped")))
	dec.Flush()

	if got := col.text(); got != "kept" {
		t.Errorf("got %q, want %q", got, "kept")
	}
	if dec.Buffered() != 0 {
		t.Errorf("Buffered() = %d after sentinel, want 0", dec.Buffered())
	}
}

func TestDecoder_CRLFLines(t *testing.T) {
	stream := "data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\r\n\r\ndata: [DONE]\r\n\r\n"

	var col collector
	dec := NewDecoder(col.add)
	_, _ = dec.Write([]byte(stream))

	if got := col.text(); got != "x" {
		t.Errorf("got %q, want %q", got, "x")
	}
	if !dec.Done() {
		t.Error("expected sentinel to be recognised with CRLF")
	}
}

func TestDecoder_IgnoresFramesWithoutContent(t *testing.T) {
	stream := strings.Join([]string{
		`data: {"choices":[]}`,
		`data: {"choices":[{"delta":{}}]}`,
		`data: {"choices":[{"delta":{"content":""}}]}`,
		`data: {"choices":[{"delta":{"content":42}}]}`,
		`data: {"usage":{"total_tokens":3}}`,
		`data: {"choices":[{"delta":{"content":"ok"}}]}`,
		``,
	}, "\n")

	var col collector
	dec := NewDecoder(col.add)
	_, _ = dec.Write([]byte(stream))
	dec.Flush()

	if got := col.text(); got != "ok" {
		t.Errorf("got %q, want %q", got, "ok")
	}
}

func TestDecoder_MalformedLineIsKeptUntilFlush(t *testing.T) {
	var col collector
	dec := NewDecoder(col.add)

	_, _ = dec.Write([]byte(frame("one") + "data: {not json\n\n" + frame("two")))
	if got := col.text(); got != "one" {
		t.Fatalf("before flush got %q, want %q", got, "one")
	}
	if dec.Buffered() == 0 {
		t.Fatal("expected the malformed line to stay buffered")
	}

	dec.Flush()
	if got := col.text(); got != "onetwo" {
		t.Errorf("after flush got %q, want %q", got, "onetwo")
	}
	if dec.Buffered() != 0 {
		t.Errorf("Buffered() = %d after flush, want 0", dec.Buffered())
	}
}

func TestDecoder_FlushHandlesUnterminatedTail(t *testing.T) {
	var col collector
	dec := NewDecoder(col.add)
	_, _ = dec.Write([]byte(frame("a") + `data: {"choices":[{"delta":{"content":"b"}}]}`))
	dec.Flush()

	if got := col.text(); got != "ab" {
		t.Errorf("got %q, want %q", got, "ab")
	}
}

func TestDecoder_BufferLimit(t *testing.T) {
	dec := NewDecoder(func(string) {})
	dec.SetMaxBuffer(64)

	_, err := dec.Write([]byte("data: {broken\n" + strings.Repeat("x", 100)))
	if !errors.Is(err, ErrBufferOverflow) {
		t.Fatalf("err = %v, want ErrBufferOverflow", err)
	}

	unlimited := NewDecoder(func(string) {})
	unlimited.SetMaxBuffer(0)
	if _, err := unlimited.Write([]byte(strings.Repeat("y", 4096))); err != nil {
		t.Fatalf("unlimited decoder: %v", err)
	}
}

func TestWriter_Frames(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_ = w.WriteDelta("Hel")
	_ = w.WriteComment("upstream\nfailed")
	_ = w.WriteDone()

	want := "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n" +
		": upstream failed\n\n" +
		"data: [DONE]\n\n"
	if buf.String() != want {
		t.Errorf("got %q\nwant %q", buf.String(), want)
	}
}
