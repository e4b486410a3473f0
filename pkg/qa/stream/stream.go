package stream

import (
	"context"
	"errors"
)

// Sentinel write failures. Disconnect and backpressure are different
// conditions with different handling: a gone client stops the stream
// silently, a full buffer is a delivery defect worth reporting.
var (
	ErrClientGone = errors.New("stream: client gone")
	ErrBufferFull = errors.New("stream: buffer full")
)

// FrameWriter delivers one request's response chunks to its client. The
// transport (SSE over Fiber, websocket, a test sink) decides how frames hit
// the wire.
type FrameWriter interface {
	WriteChunk(ctx context.Context, seq int, text string) error
	// WriteDone emits the reserved terminator frame.
	WriteDone(ctx context.Context) error
	Close() error
}

const defaultChunkSize = 64

// Chunks splits text into frame-sized pieces, cutting on the last space
// inside each window so words survive intact. Joining the chunks restores
// the original text exactly.
func Chunks(text string, size int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = defaultChunkSize
	}

	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		cut := end
		for i := end; i > start; i-- {
			if runes[i-1] == ' ' || runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, string(runes[start:cut]))
		start = cut
	}
	return chunks
}
