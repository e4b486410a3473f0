package controller

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"testing"

	"regassist-be/pkg/qa/stream"
)

type brokenPipe struct{}

func (brokenPipe) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestSSEFrameFormat(t *testing.T) {
	var buf bytes.Buffer
	w := newSSEFrameWriter(bufio.NewWriter(&buf))
	ctx := context.Background()

	if err := w.WriteChunk(ctx, 0, "The weekly cap"); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}
	if err := w.WriteChunk(ctx, 1, "is 40 hours."); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}
	if err := w.WriteDone(ctx); err != nil {
		t.Fatalf("WriteDone: %v", err)
	}

	want := "data: The weekly cap\n\ndata: is 40 hours.\n\ndata: [DONE]\n\n"
	if buf.String() != want {
		t.Errorf("wire = %q, want %q", buf.String(), want)
	}
}

func TestSSEMultiLineChunk(t *testing.T) {
	var buf bytes.Buffer
	w := newSSEFrameWriter(bufio.NewWriter(&buf))

	// Golden answers append recency notices on their own lines; each line
	// needs its own data: prefix inside the same frame.
	if err := w.WriteChunk(context.Background(), 0, "The cap is 40 hours.\n\nNote: regulations changed."); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}

	want := "data: The cap is 40 hours.\ndata: \ndata: Note: regulations changed.\n\n"
	if buf.String() != want {
		t.Errorf("wire = %q, want %q", buf.String(), want)
	}
}

func TestSSEFlushesEveryChunk(t *testing.T) {
	var buf bytes.Buffer
	w := newSSEFrameWriter(bufio.NewWriter(&buf))

	if err := w.WriteChunk(context.Background(), 0, "first"); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}
	// The frame must be on the wire before the next chunk arrives.
	if buf.String() != "data: first\n\n" {
		t.Errorf("buffered frame not flushed, wire = %q", buf.String())
	}
}

func TestSSECancelledContext(t *testing.T) {
	var buf bytes.Buffer
	w := newSSEFrameWriter(bufio.NewWriter(&buf))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.WriteChunk(ctx, 0, "late chunk")
	if !errors.Is(err, stream.ErrClientGone) {
		t.Errorf("err = %v, want ErrClientGone", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %q after cancellation", buf.String())
	}
}

func TestSSEBrokenPipeIsClientGone(t *testing.T) {
	w := newSSEFrameWriter(bufio.NewWriter(brokenPipe{}))

	if err := w.WriteChunk(context.Background(), 0, "chunk"); !errors.Is(err, stream.ErrClientGone) {
		t.Errorf("WriteChunk err = %v, want ErrClientGone", err)
	}
	if err := w.WriteDone(context.Background()); !errors.Is(err, stream.ErrClientGone) {
		t.Errorf("WriteDone err = %v, want ErrClientGone", err)
	}
}
