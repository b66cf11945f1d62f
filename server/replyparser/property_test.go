package replyparser

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// emailLine draws lines that exercise every classification: plain text,
// quotes, reply headers, header fields, banners, signatures and blanks.
var emailLine = rapid.Custom(func(t *rapid.T) string {
	word := rapid.StringMatching(`[A-Za-z]{1,8}`).Draw(t, "word")
	switch rapid.IntRange(0, 11).Draw(t, "kind") {
	case 0:
		return word + " " + rapid.StringMatching(`[a-z ]{0,20}`).Draw(t, "rest")
	case 1:
		return "> " + word
	case 2:
		return ">> " + word
	case 3:
		return "On Monday, " + word + " wrote:"
	case 4:
		return "On Monday, " + word
	case 5:
		return "wrote:"
	case 6:
		return rapid.SampledFrom([]string{"From", "Sent", "To", "Subject", "*From"}).Draw(t, "field") + ": " + word
	case 7:
		return "---------- Forwarded message ----------"
	case 8:
		return rapid.SampledFrom([]string{"--", "-- ", "-" + word, "Sent from my " + word}).Draw(t, "signature")
	case 9:
		return rapid.SampledFrom([]string{"_______", "-------------", " ________"}).Draw(t, "boundary")
	case 10:
		return rapid.SampledFrom([]string{"  ", "\t"}).Draw(t, "whitespace")
	default:
		return ""
	}
})

var emailText = rapid.Custom(func(t *rapid.T) string {
	return strings.Join(rapid.SliceOfN(emailLine, 0, 40).Draw(t, "lines"), "\n")
})

// TestPropertyReconstruction checks that fragments partition the text: their
// raw lines, joined in order, give back the text that was scanned.
func TestPropertyReconstruction(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := emailText.Draw(t, "text")
		msg := Read(text)

		raws := make([]string, 0, len(msg.Fragments()))
		for _, f := range msg.Fragments() {
			raws = append(raws, f.Raw())
		}
		if got := strings.Join(raws, "\n"); got != msg.Text() {
			t.Fatalf("fragments do not reconstruct text:\n got %q\nwant %q", got, msg.Text())
		}
		if want := preprocess(text); msg.Text() != want {
			t.Fatalf("text mismatch: got %q, want %q", msg.Text(), want)
		}
	})
}

func TestPropertyParseReplyIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := emailText.Draw(t, "text")

		first := ParseReply(text)
		second := ParseReply(text)
		if first != second {
			t.Fatalf("ParseReply not stable: %q != %q", first, second)
		}
	})
}

func TestPropertyLineEndingsIgnored(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := emailText.Draw(t, "text")

		unix := ParseReply(text)
		windows := ParseReply(strings.Replace(text, "\n", "\r\n", -1))
		if unix != windows {
			t.Fatalf("CRLF changed the reply: %q != %q", windows, unix)
		}
	})
}

// TestPropertyHeaderCascade checks that every fragment below a header
// fragment is hidden.
func TestPropertyHeaderCascade(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fragments := Read(emailText.Draw(t, "text")).Fragments()

		for i, f := range fragments {
			if !f.Headers() {
				continue
			}
			for j, below := range fragments[i+1:] {
				if !below.Hidden() {
					t.Fatalf("fragment %d %q below header %d %q is visible", i+1+j, below.Content(), i, f.Content())
				}
			}
		}
	})
}

// TestPropertyHiddenUntilVisible checks that the lowest fragment with real
// content is visible unless a header above it hides it, and that header
// fragments are always hidden.
func TestPropertyHiddenUntilVisible(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fragments := Read(emailText.Draw(t, "text")).Fragments()

		for i := len(fragments) - 1; i >= 0; i-- {
			f := fragments[i]
			if f.Headers() {
				if !f.Hidden() {
					t.Fatalf("header fragment %d %q is visible", i, f.Content())
				}
				continue
			}
			if f.Quoted() || f.Signature() || strings.TrimSpace(f.Content()) == "" {
				continue
			}
			if f.Hidden() && !headerAbove(fragments, i) {
				t.Fatalf("content fragment %d %q is hidden", i, f.Content())
			}
			break
		}
	})
}

func headerAbove(fragments []*Fragment, i int) bool {
	for _, f := range fragments[:i] {
		if f.Headers() {
			return true
		}
	}
	return false
}

func TestPropertyContentWithinRaw(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		for _, f := range Read(emailText.Draw(t, "text")).Fragments() {
			if !strings.Contains(f.Raw(), f.Content()) {
				t.Fatalf("content %q not found in raw %q", f.Content(), f.Raw())
			}
			if f.Content() != strings.TrimSpace(f.Content()) {
				t.Fatalf("content %q is not trimmed", f.Content())
			}
		}
	})
}
