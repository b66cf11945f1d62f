package replyparser

import (
	"regexp"
	"strings"
)

var (
	quoteHeaderRe     = regexp.MustCompile(`On.*wrote:$`)
	headerFieldRe     = regexp.MustCompile(`^\*?(From|Sent|To|Subject):\*? .+`)
	forwardedBannerRe = regexp.MustCompile(`^-+ Forwarded message -+$`)
	signatureLineRe   = regexp.MustCompile(`(--|__|-\w)|(^Sent from my (\w+\s*){1,3})`)
)

// minBoundaryRun is the shortest run of '-' or '_' treated as a signature boundary.
const minBoundaryRun = 7

// lineClass holds the facets of a single line that drive fragment grouping.
type lineClass struct {
	quoteHeader bool
	quoted      bool
	header      bool
	blank       bool
}

func classifyLine(line string) lineClass {
	quoteHeader := isQuoteHeader(line)
	return lineClass{
		quoteHeader: quoteHeader,
		quoted:      isQuoted(line),
		header:      quoteHeader || isHeaderField(line) || isForwardedBanner(line),
		blank:       isBlank(line),
	}
}

// isQuoteHeader reports whether line looks like "On <date>, <name> wrote:".
func isQuoteHeader(line string) bool {
	return quoteHeaderRe.MatchString(line)
}

// isQuoted reports whether line starts with a quote marker, ignoring indentation.
func isQuoted(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), ">")
}

func isHeaderField(line string) bool {
	return headerFieldRe.MatchString(line)
}

func isForwardedBanner(line string) bool {
	return forwardedBannerRe.MatchString(strings.TrimSpace(line))
}

// isSignatureLine expects an already trimmed line.
func isSignatureLine(line string) bool {
	return signatureLineRe.MatchString(line)
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// isSignatureBoundary reports whether line is an Outlook style separator: an
// optional single space followed by at least seven '-' or '_' characters.
func isSignatureBoundary(line string) bool {
	line = strings.TrimPrefix(line, " ")
	n := 0
	for n < len(line) && (line[n] == '-' || line[n] == '_') {
		n++
	}
	return n >= minBoundaryRun
}
