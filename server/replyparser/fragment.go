package replyparser

import (
	"strings"
	"unicode"
)

// Fragment is a contiguous run of lines from an email that share the same
// quoted and header classification.
type Fragment struct {
	quoted    bool
	headers   bool
	signature bool
	hidden    bool

	// lines are collected bottom-up while the fragment is open and dropped
	// once it is finished.
	lines   []string
	raw     string
	content string
}

func newFragment(line string, class lineClass) *Fragment {
	return &Fragment{
		quoted:  class.quoted,
		headers: class.header,
		lines:   []string{line},
	}
}

// add appends a line that sits directly above the lines collected so far.
func (f *Fragment) add(line string) {
	f.lines = append(f.lines, line)
}

// lastLine returns the most recently added line, which is the topmost line of
// the fragment in message order.
func (f *Fragment) lastLine() string {
	return f.lines[len(f.lines)-1]
}

// finish restores message order, builds the content and releases the line
// buffer. A trailing "wrote:" left over from a reply header is dropped.
func (f *Fragment) finish() {
	for i, j := 0, len(f.lines)-1; i < j; i, j = i+1, j-1 {
		f.lines[i], f.lines[j] = f.lines[j], f.lines[i]
	}
	f.raw = strings.Join(f.lines, "\n")
	f.lines = nil

	content := strings.TrimSpace(f.raw)
	if strings.HasSuffix(content, quoteHeaderClose) {
		content = strings.TrimRightFunc(strings.TrimSuffix(content, quoteHeaderClose), unicode.IsSpace)
	}
	f.content = content
}

// Quoted reports whether the fragment is part of a quoted block.
func (f *Fragment) Quoted() bool {
	return f.quoted
}

// Headers reports whether the fragment is a reply or forward header block.
func (f *Fragment) Headers() bool {
	return f.headers
}

// Signature reports whether the fragment is a signature block.
func (f *Fragment) Signature() bool {
	return f.signature
}

// Hidden reports whether the fragment is excluded from the visible reply.
func (f *Fragment) Hidden() bool {
	return f.hidden
}

// Content returns the trimmed text of the fragment.
func (f *Fragment) Content() string {
	return f.content
}

// Raw returns the untrimmed lines of the fragment joined with "\n".
// Joining the Raw value of every fragment of a Message with "\n" yields
// Message.Text.
func (f *Fragment) Raw() string {
	return f.raw
}

func (f *Fragment) String() string {
	return f.content
}
