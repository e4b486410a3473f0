package stream

import "strings"

// SSE wire constants per the delivery format: newline-delimited frames, one
// content chunk per frame, a reserved [DONE] terminator.
const (
	ContentType = "text/event-stream"
	doneMarker  = "[DONE]"
)

// FrameData renders one chunk as an SSE data frame. Multi-line chunks become
// multiple data: lines inside the same frame, as the format requires.
func FrameData(text string) []byte {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// FrameDone renders the terminator frame.
func FrameDone() []byte {
	return []byte("data: " + doneMarker + "\n\n")
}
