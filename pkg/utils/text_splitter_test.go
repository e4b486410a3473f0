package utils

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitTextShortInputReturnedWhole(t *testing.T) {
	text := "Notice periods extend with service."
	chunks := SplitText(text, 100, 20)
	if len(chunks) != 1 || chunks[0] != text {
		t.Errorf("short input split into %d chunks", len(chunks))
	}
}

func TestSplitTextRespectsChunkSize(t *testing.T) {
	text := strings.Repeat("Overtime requires consent except in emergencies. ", 20)
	chunks := SplitText(text, 120, 30)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := len([]rune(c)); n > 120 {
			t.Errorf("chunk %d holds %d runes, cap is 120", i, n)
		}
		if !strings.Contains(text, c) {
			t.Errorf("chunk %d is not a substring of the input", i)
		}
	}
	if !strings.HasPrefix(text, chunks[0]) {
		t.Error("first chunk does not open the document")
	}
	if !strings.HasSuffix(text, chunks[len(chunks)-1]) {
		t.Error("last chunk does not close the document")
	}
}

func TestSplitTextSnapsToBreaks(t *testing.T) {
	text := strings.Repeat("The workday ends after eight hours. ", 12)
	chunks := SplitText(text, 108, 20)

	// Every non-final cut lands on a break or fills the chunk exactly.
	for i, c := range chunks[:len(chunks)-1] {
		runes := []rune(c)
		if len(runes) < 108 && !strings.HasSuffix(c, " ") {
			t.Errorf("chunk %d cut mid-word: %q", i, c[len(c)-12:])
		}
	}
}

func TestSplitTextUnbrokenRunHardCuts(t *testing.T) {
	text := strings.Repeat("x", 250)
	chunks := SplitText(text, 100, 10)

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if len(chunks[0]) != 100 || len(chunks[1]) != 100 {
		t.Errorf("unbroken run should hard-cut at the cap, got %d and %d", len(chunks[0]), len(chunks[1]))
	}
}

func TestSplitTextRuneSafe(t *testing.T) {
	text := strings.Repeat("Az éves szabadság húsz munkanap. ", 15)
	for _, c := range SplitText(text, 90, 15) {
		if !utf8.ValidString(c) {
			t.Fatalf("chunk holds invalid UTF-8: %q", c)
		}
	}
}

func TestSplitTextOverlapGuard(t *testing.T) {
	// overlap >= chunkSize would stall; the splitter falls back to stepping a
	// full chunk.
	text := strings.Repeat("a b ", 60)
	chunks := SplitText(text, 40, 40)
	if len(chunks) < 2 {
		t.Fatalf("degenerate overlap produced %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if len([]rune(c)) > 40 {
			t.Errorf("chunk %d exceeds cap under degenerate overlap", i)
		}
	}
}
