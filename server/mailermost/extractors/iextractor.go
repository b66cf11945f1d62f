package extractors

import "strings"

// IExtractor is interface which needs to be implemented by all email extractors in this directory
type IExtractor interface {
	// ExtractMessage returns the reply typed by the sender from a decoded text body.
	ExtractMessage(body string) string
}

const mozGaiaMailer = "Gaia"

// ForMailer picks the extractor for the mail client named in an X-Mailer or
// User-Agent header. Clients without a custom implementation get DefaultExtractor.
func ForMailer(mailer string) IExtractor {
	if strings.Contains(mailer, mozGaiaMailer) {
		return MozGaiaExtractor{}
	}
	return DefaultExtractor{}
}
