package extractors

import (
	"strings"

	"github.com/mattermost-community/mattermost-plugin-email-reply/server/replyparser"
)

// DefaultExtractor is used for extracting emails all email clients which don't have custom implementation
type DefaultExtractor struct {
}

// ExtractMessage is implementation of IExtractor interface. It drops quoted
// text, reply headers and signatures and returns only the visible reply.
func (e DefaultExtractor) ExtractMessage(body string) string {
	return strings.TrimSpace(replyparser.ParseReply(body))
}
