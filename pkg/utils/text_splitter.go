package utils

import "unicode"

// SplitText breaks regulation text into chunks of at most chunkSize runes,
// repeating overlap runes between neighbors so a clause cut at a boundary
// still appears whole in one chunk. Chunk ends snap back to the nearest
// whitespace inside the last tenth of the chunk, preferring a spot right
// after sentence punctuation; a hard mid-word cut only happens on unbroken
// runs longer than the chunk.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	var chunks []string
	start := 0
	for {
		end := start + chunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			return chunks
		}

		cut := snapToBoundary(runes, start, end)
		chunks = append(chunks, string(runes[start:cut]))

		next := cut - overlap
		if next <= start {
			next = start + step
		}
		start = next
	}
}

// snapToBoundary scans back from end for a break inside the snap window. A
// whitespace rune following sentence punctuation wins; otherwise the
// rightmost whitespace does. Returns end when the window holds no break.
func snapToBoundary(runes []rune, start, end int) int {
	limit := end - (end-start)/10
	if limit <= start {
		return end
	}

	best := -1
	for i := end - 1; i >= limit; i-- {
		if !unicode.IsSpace(runes[i]) {
			continue
		}
		if best == -1 {
			best = i
		}
		if i > start && sentenceEnd(runes[i-1]) {
			return i + 1
		}
	}
	if best >= 0 {
		return best + 1
	}
	return end
}

func sentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', ';':
		return true
	}
	return false
}
