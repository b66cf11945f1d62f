package extractors

import (
	"strings"

	"github.com/mattermost-community/mattermost-plugin-email-reply/server/replyparser"
)

const (
	mozGaiaReplyEnd  = "<br/><br/>"
	mozGaiaLineBreak = "<br/>"
)

// MozGaiaExtractor is used for extracting emails from KaiOS mobile email client
type MozGaiaExtractor struct {
}

// ExtractMessage is implementation of IExtractor interface with method for extracting emails
// from KaiOS mobile email client. Its plain text part carries <br/> markup and
// the reply ends at the first empty line.
func (e MozGaiaExtractor) ExtractMessage(body string) string {
	if idx := strings.Index(body, mozGaiaReplyEnd); idx != -1 {
		body = body[:idx]
	}
	body = strings.Replace(body, mozGaiaLineBreak, "\n", -1)
	return strings.TrimSpace(replyparser.ParseReply(body))
}
