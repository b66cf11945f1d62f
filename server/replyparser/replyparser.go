// Package replyparser extracts the newly written part of a plain text email
// reply. It splits the body into fragments, marks quoted text, reply and
// forward headers and signatures, and hides everything that is not the
// reply the sender typed.
//
// All matching runs in linear time, so arbitrary input can be parsed safely.
package replyparser

// Read parses text and returns the classified fragments. Line endings are
// normalized to "\n" first. Read never fails; empty input yields a message
// with a single empty, hidden fragment.
func Read(text string) *Message {
	m := &Message{text: preprocess(normalize(text))}
	m.read()
	return m
}

// ParseReply returns only the visible reply of text.
func ParseReply(text string) string {
	return Read(text).Reply()
}
