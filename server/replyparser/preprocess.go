package replyparser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	quoteHeaderOpen  = "On"
	quoteHeaderClose = "wrote:"
)

// normalize unifies line endings to "\n".
func normalize(text string) string {
	return strings.Replace(text, "\r\n", "\n", -1)
}

// preprocess applies the text level rewrites that must happen before lines
// are classified.
func preprocess(text string) string {
	text = collapseQuoteHeader(text)
	return repairSignatureBoundaries(text)
}

// collapseQuoteHeader joins a reply header that a mail client wrapped over
// several lines, e.g.
//
//	On Tue, Apr 29, 2014 at 4:22 PM, Example Dev <dev@example.com>
//	wrote:
//
// into one physical line. The header rewritten is the one opened by the last
// "On<space>" that still has a "wrote:" after it, so a body line that happens
// to start with "On" does not swallow the text between it and the real header.
// Only that one span is rewritten.
//
// The scan is linear: one pass over the candidate positions and one search
// for the terminator.
func collapseQuoteHeader(text string) string {
	lastClose := strings.LastIndex(text, quoteHeaderClose)
	if lastClose < 0 {
		return text
	}

	start := -1
	for i := 0; i+len(quoteHeaderOpen) < len(text); {
		j := strings.Index(text[i:], quoteHeaderOpen)
		if j < 0 {
			break
		}
		p := i + j
		next := p + len(quoteHeaderOpen)
		if next >= len(text) {
			break
		}
		r, size := utf8.DecodeRuneInString(text[next:])
		// The header needs at least one character between "On<space>" and "wrote:".
		if unicode.IsSpace(r) && lastClose >= next+size+1 {
			start = p
		}
		i = p + 1
	}
	if start < 0 {
		return text
	}

	_, size := utf8.DecodeRuneInString(text[start+len(quoteHeaderOpen):])
	from := start + len(quoteHeaderOpen) + size + 1
	end := strings.Index(text[from:], quoteHeaderClose)
	if end < 0 {
		return text
	}
	end = from + end + len(quoteHeaderClose)

	span := text[start:end]
	if !strings.Contains(span, "\n") {
		return text
	}
	return text[:start] + strings.Replace(span, "\n", "", -1) + text[end:]
}

// repairSignatureBoundaries inserts a blank line above every signature
// boundary line (see isSignatureBoundary) that directly follows content, so
// Outlook replies typed right above the separator end up in their own
// fragment.
func repairSignatureBoundaries(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if i > 0 && lines[i-1] != "" && isSignatureBoundary(line) {
			out = append(out, "")
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
