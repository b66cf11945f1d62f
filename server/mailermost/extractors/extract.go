package extractors

import (
	"io"
	"io/ioutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/emersion/go-message"
	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"
)

const (
	mediaTypePlain = "text/plain"
	mediaTypeHTML  = "text/html"

	dispositionAttachment = "attachment"
)

// ErrNoTextBody is returned when a message has neither a text/plain nor a
// text/html part.
var ErrNoTextBody = errors.New("message has no text body")

func init() {
	message.CharsetReader = charset.NewReaderLabel
}

// ExtractReply decodes a raw RFC 5322 message and returns the reply typed by
// the sender. The first inline text/plain part is preferred; text/html is
// converted to text only when no plain part exists.
func ExtractReply(r io.Reader) (string, error) {
	entity, err := message.Read(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return "", errors.Wrap(err, "failed to read message")
	}

	mailer := entity.Header.Get("X-Mailer")
	if mailer == "" {
		mailer = entity.Header.Get("User-Agent")
	}

	body, err := textBody(entity)
	if err != nil {
		return "", err
	}

	return ForMailer(mailer).ExtractMessage(body), nil
}

type textParts struct {
	plain    string
	html     string
	hasPlain bool
	hasHTML  bool
}

func textBody(entity *message.Entity) (string, error) {
	var parts textParts
	if err := collectText(entity, &parts); err != nil {
		return "", err
	}

	switch {
	case parts.hasPlain:
		return parts.plain, nil
	case parts.hasHTML:
		return htmlToText(parts.html)
	default:
		return "", ErrNoTextBody
	}
}

// collectText walks the entity tree depth first and keeps the first inline
// part of each text type.
func collectText(entity *message.Entity, parts *textParts) error {
	if mr := entity.MultipartReader(); mr != nil {
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				return nil
			}
			if err != nil && !message.IsUnknownCharset(err) {
				return errors.Wrap(err, "failed to read message part")
			}
			if err := collectText(part, parts); err != nil {
				return err
			}
		}
	}

	if disposition, _, _ := entity.Header.ContentDisposition(); disposition == dispositionAttachment {
		return nil
	}

	mediaType := mediaTypePlain
	if entity.Header.Get("Content-Type") != "" {
		t, _, err := entity.Header.ContentType()
		if err != nil {
			return nil
		}
		mediaType = t
	}

	switch {
	case mediaType == mediaTypePlain && !parts.hasPlain:
		text, err := readBody(entity)
		if err != nil {
			return err
		}
		parts.plain, parts.hasPlain = text, true
	case mediaType == mediaTypeHTML && !parts.hasHTML:
		text, err := readBody(entity)
		if err != nil {
			return err
		}
		parts.html, parts.hasHTML = text, true
	}

	return nil
}

func readBody(entity *message.Entity) (string, error) {
	b, err := ioutil.ReadAll(entity.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read message body")
	}
	return string(b), nil
}

// htmlToText drops quoted and non-visible elements and turns block elements
// into line breaks.
func htmlToText(body string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "failed to parse html body")
	}

	doc.Find("head, style, script, blockquote").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, tr, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return strings.TrimSpace(doc.Text()), nil
}
