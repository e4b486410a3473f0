// FILE: internal/controller/sse_writer.go
package controller

import (
	"bufio"
	"context"

	"regassist-be/pkg/qa/stream"
)

// sseFrameWriter emits newline-delimited SSE frames over a fasthttp body
// stream. Every write flushes immediately; a failed flush means the client
// is gone, not a server fault.
type sseFrameWriter struct {
	w *bufio.Writer
}

func newSSEFrameWriter(w *bufio.Writer) *sseFrameWriter {
	return &sseFrameWriter{w: w}
}

func (s *sseFrameWriter) WriteChunk(ctx context.Context, seq int, text string) error {
	if ctx.Err() != nil {
		return stream.ErrClientGone
	}
	if _, err := s.w.Write(stream.FrameData(text)); err != nil {
		return stream.ErrClientGone
	}
	if err := s.w.Flush(); err != nil {
		return stream.ErrClientGone
	}
	return nil
}

func (s *sseFrameWriter) WriteDone(ctx context.Context) error {
	if _, err := s.w.Write(stream.FrameDone()); err != nil {
		return stream.ErrClientGone
	}
	if err := s.w.Flush(); err != nil {
		return stream.ErrClientGone
	}
	return nil
}

func (s *sseFrameWriter) Close() error {
	return s.w.Flush()
}
