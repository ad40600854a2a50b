package telegram

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxChunkLen stays well under the 4096 character sendMessage limit
const MaxChunkLen = 3500

var lineBreak = regexp.MustCompile(`\r\n|\r|\n`)

// SplitLines splits on any of \r\n, \r or \n
func SplitLines(message string) []string {
	return lineBreak.Split(message, -1)
}

// Chunk packs lines greedily into newline-joined pieces of at most maxLen
// bytes. Lines are never merged across a chunk boundary; a line longer than
// maxLen is hard-split on rune boundaries. Empty chunks are never returned.
func Chunk(lines []string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = MaxChunkLen
	}

	var chunks []string
	var buf strings.Builder
	started := false
	flush := func() {
		if buf.Len() > 0 {
			chunks = append(chunks, buf.String())
		}
		buf.Reset()
		started = false
	}

	for _, line := range lines {
		for len(line) > maxLen {
			flush()
			head := cutRunes(line, maxLen)
			chunks = append(chunks, head)
			line = line[len(head):]
		}

		if started && buf.Len()+1+len(line) > maxLen {
			flush()
		}
		if started {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
		started = true
	}
	flush()

	return chunks
}

// cutRunes returns the longest prefix of s no longer than n bytes that ends on
// a rune boundary. Only the last utf8.UTFMax-1 bytes are searched; invalid
// UTF-8 with no rune start there is cut at n. A multi-byte rune wider than n
// is returned whole so progress is guaranteed.
func cutRunes(s string, n int) string {
	end := n
	for end > 0 && end > n-(utf8.UTFMax-1) && !utf8.RuneStart(s[end]) {
		end--
	}
	switch {
	case !utf8.RuneStart(s[end]):
		end = n
	case end == 0:
		_, size := utf8.DecodeRuneInString(s)
		end = size
	}
	return s[:end]
}
