// Package chatstream implements both ends of the relay's event-stream wire
// format: a frame writer for the server and an incremental decoder plus HTTP
// client for consumers.
//
// Every frame is a "data: " line followed by a blank line. Content frames
// carry {"choices":[{"delta":{"content":"..."}}]}; the stream ends with the
// literal sentinel "data: [DONE]". Lines starting with ":" are comments.
package chatstream

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	DataPrefix = "data: "
	Sentinel   = "[DONE]"

	ContentType = "text/event-stream"
)

type deltaFrame struct {
	Choices []frameChoice `json:"choices"`
}

type frameChoice struct {
	Delta frameDelta `json:"delta"`
}

type frameDelta struct {
	Content string `json:"content"`
}

type flusher interface {
	Flush()
}

// Writer encodes frames onto w, flushing after every frame when w supports it.
type Writer struct {
	w io.Writer
	f flusher
}

func NewWriter(w io.Writer) *Writer {
	f, _ := w.(flusher)
	return &Writer{w: w, f: f}
}

// WriteDelta emits one content frame.
func (w *Writer) WriteDelta(content string) error {
	payload, err := json.Marshal(deltaFrame{Choices: []frameChoice{{Delta: frameDelta{Content: content}}}})
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return w.write(DataPrefix + string(payload) + "\n\n")
}

// WriteDone emits the sentinel frame. Nothing may follow it.
func (w *Writer) WriteDone() error {
	return w.write(DataPrefix + Sentinel + "\n\n")
}

// WriteComment emits a comment line, which consumers ignore.
func (w *Writer) WriteComment(text string) error {
	text = strings.ReplaceAll(text, "\n", " ")
	return w.write(": " + text + "\n\n")
}

func (w *Writer) write(s string) error {
	if _, err := io.WriteString(w.w, s); err != nil {
		return err
	}
	if w.f != nil {
		w.f.Flush()
	}
	return nil
}
