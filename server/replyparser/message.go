package replyparser

import (
	"strings"
)

// Message is the result of reading one email body.
type Message struct {
	text string

	// fragments holds finished fragments in the order they were closed while
	// reading, and in message order once Read returns.
	fragments []*Fragment
	// fragment is the fragment currently being filled, if any.
	fragment *Fragment
	// foundVisible is set once a fragment below the current position has
	// been chosen as visible reply content.
	foundVisible bool
	// hiddenUpTo is the number of leading entries of fragments already hidden
	// by a header fragment.
	hiddenUpTo int
}

// Text returns the normalized and preprocessed text the fragments were built
// from.
func (m *Message) Text() string {
	return m.text
}

// Fragments returns the fragments of the message in top-to-bottom order.
func (m *Message) Fragments() []*Fragment {
	fragments := make([]*Fragment, len(m.fragments))
	copy(fragments, m.fragments)
	return fragments
}

// Reply returns the visible reply: the content of every fragment that is
// neither hidden nor quoted, joined with "\n".
func (m *Message) Reply() string {
	var parts []string
	for _, f := range m.fragments {
		if f.hidden || f.quoted {
			continue
		}
		parts = append(parts, f.content)
	}
	return strings.Join(parts, "\n")
}

// read scans the lines bottom-up. Signatures and quoted blocks sit at the
// bottom of an email, so they are bounded before the reply above them is
// reached.
func (m *Message) read() {
	lines := strings.Split(m.text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		m.scanLine(lines[i])
	}
	m.finishFragment()

	for i, j := 0, len(m.fragments)-1; i < j; i, j = i+1, j-1 {
		m.fragments[i], m.fragments[j] = m.fragments[j], m.fragments[i]
	}
}

func (m *Message) scanLine(line string) {
	class := classifyLine(line)

	// A blank line above a line that looks like a signature start closes the
	// fragment below as a signature.
	if m.fragment != nil && class.blank && isSignatureLine(strings.TrimSpace(m.fragment.lastLine())) {
		m.fragment.signature = true
		m.finishFragment()
	}

	if m.fragment == nil {
		m.fragment = newFragment(line, class)
		return
	}

	// Quoted fragments absorb blank lines and the reply header above them.
	f := m.fragment
	if (f.headers == class.header && f.quoted == class.quoted) ||
		(f.quoted && (class.quoteHeader || class.blank)) {
		f.add(line)
		return
	}

	m.finishFragment()
	m.fragment = newFragment(line, class)
}

// finishFragment closes the open fragment and decides its visibility.
//
// A header fragment marks the start of an earlier message, so everything
// closed before it (everything below it in the email) is hidden and the
// search for visible content starts over above it. Until visible content is
// found, quoted, header, signature and blank fragments are hidden.
func (m *Message) finishFragment() {
	f := m.fragment
	if f == nil {
		return
	}
	m.fragment = nil
	f.finish()

	if f.headers {
		m.foundVisible = false
		for _, prev := range m.fragments[m.hiddenUpTo:] {
			prev.hidden = true
		}
		m.hiddenUpTo = len(m.fragments)
	}

	if !m.foundVisible {
		if f.quoted || f.headers || f.signature || strings.TrimSpace(f.content) == "" {
			f.hidden = true
		} else {
			m.foundVisible = true
		}
	}

	m.fragments = append(m.fragments, f)
}
