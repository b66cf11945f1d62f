package mailermost

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"net/mail"
	"regexp"
	"sort"

	imap "github.com/emersion/go-imap"
	"github.com/mattermost/mattermost-server/v5/model"
	"github.com/pkg/errors"

	"github.com/mattermost-community/mattermost-plugin-email-reply/server/mailermost/extractors"
)

const (
	ellipsisLen                    int = 50
	maxPostIDsPerNotificationEmail     = 2

	batchReplyMessage = "It appears as if you attempted to reply to a batched notification email, which is not supported. Your reply was not posted to Mattermost."
)

var (
	postIDURLRe       = regexp.MustCompile(`https?:\/\/.*\/pl\/[a-z0-9]{26}`)
	emailLineEndingRe = regexp.MustCompile(`=\r?\n`)
)

type replyToBatchError struct {
	Message string
}

func (r *replyToBatchError) Error() string {
	return r.Message
}

// postReply posts the reply in a raw notification reply email to the thread
// it answers. keep is true when the email should stay in the mailbox so a
// later poll can retry it.
func (p *Poller) postReply(raw []byte, envelope *imap.Envelope) (keep bool, err error) {
	m, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return false, errors.Wrap(err, "failure reading email")
	}

	body, err := ioutil.ReadAll(m.Body)
	if err != nil {
		return false, errors.Wrap(err, "failed to read message body")
	}

	messageText, err := extractors.ExtractReply(bytes.NewReader(raw))
	if err != nil {
		return false, errors.Wrap(err, "failed to extract reply")
	}
	if len(messageText) == 0 {
		return false, errors.New("email has no message text")
	}

	fromAddress, err := senderAddress(envelope)
	if err != nil {
		return false, err
	}

	user, appErr := p.api.GetUserByEmail(fromAddress)
	if appErr != nil {
		return false, errors.Wrapf(appErr, "failed to get user with email address %s", fromAddress)
	}

	postID, err := postIDFromEmailBody(string(body))
	if err != nil {
		var rBatchErr *replyToBatchError
		if !errors.As(err, &rBatchErr) {
			return false, errors.Wrap(err, "post id parse error")
		}

		if appErr = p.api.SendMail(user.Email, envelope.Subject+" - REPLY NOT POSTED", rBatchErr.Error()+"<br><br><br>> "+messageText); appErr != nil {
			// Keep the email until the user has been told the reply was dropped.
			return true, errors.Wrapf(appErr, "failure sending email to user %s", user.Id)
		}
		return false, errors.Wrapf(err, "apparent attempt to reply to a batched email notification by user %s", user.Id)
	}

	post, appErr := p.api.GetPost(postID)
	if appErr != nil {
		return false, errors.Wrapf(appErr, "failed to get post with id %s", postID)
	}

	if _, appErr = p.api.GetChannelMember(post.ChannelId, user.Id); appErr != nil {
		return false, errors.Wrapf(appErr, "failed to get channel member %s in channel %s", user.Id, post.ChannelId)
	}

	postList, appErr := p.api.GetPostThread(postID)
	if appErr != nil {
		return false, errors.Wrapf(appErr, "failed to get post thread for post id %s", postID)
	}

	rootPost, lastPost := threadEnds(postList)
	if rootPost == nil {
		return false, errors.Errorf("post thread for post id %s is empty", postID)
	}

	if lastPost.Id != post.Id {
		channel, appErr := p.api.GetChannel(post.ChannelId)
		if appErr != nil {
			return false, errors.Wrapf(appErr, "failed to get channel with id %s", post.ChannelId)
		}

		team, appErr := p.api.GetTeam(channel.TeamId)
		if appErr != nil {
			return false, errors.Wrapf(appErr, "failed to get team with id %s", channel.TeamId)
		}

		messageText = quotePost(post, team.Name, messageText)
	}

	newPost := &model.Post{
		UserId:    user.Id,
		ChannelId: post.ChannelId,
		Message:   messageText,
		ParentId:  rootPost.Id,
		RootId:    rootPost.Id,
	}

	created, appErr := p.api.CreatePost(newPost)
	if appErr != nil {
		// Everything about the inbound email has been valid so far.
		return true, errors.Wrapf(appErr, "failed to create post %+v", newPost)
	}

	p.api.LogDebug("Posted email reply", "post_id", created.Id, "root_id", rootPost.Id, "user_id", user.Id)
	return false, nil
}

func senderAddress(envelope *imap.Envelope) (string, error) {
	if envelope == nil || len(envelope.From) == 0 {
		return "", errors.New("email has no sender")
	}

	from := envelope.From[0]
	if from.MailboxName == "" || from.HostName == "" {
		return "", errors.Errorf("invalid sender address %q", from.MailboxName+"@"+from.HostName)
	}

	return from.MailboxName + "@" + from.HostName, nil
}

// threadEnds returns the oldest and newest posts of a thread.
func threadEnds(postList *model.PostList) (root, last *model.Post) {
	if postList == nil || len(postList.Posts) == 0 {
		return nil, nil
	}

	threadPosts := make([]*model.Post, 0, len(postList.Posts))
	for _, v := range postList.Posts {
		threadPosts = append(threadPosts, v)
	}
	sort.Slice(threadPosts, func(i, j int) bool {
		return threadPosts[i].CreateAt > threadPosts[j].CreateAt
	})

	return threadPosts[len(threadPosts)-1], threadPosts[0]
}

// quotePost prefixes a reply with a permalink quote of the post it answers.
func quotePost(post *model.Post, teamName, messageText string) string {
	postPl := "/" + teamName + "/pl/" + post.Id

	if message := []rune(post.Message); len(message) > ellipsisLen {
		return fmt.Sprintf("> [%s](%s)...\n\n%s", string(message[:ellipsisLen]), postPl, messageText)
	}
	return fmt.Sprintf("> [%s](%s)\n\n%s", post.Message, postPl, messageText)
}

func postIDFromEmailBody(emailBody string) (string, error) {
	emailBody = emailLineEndingRe.ReplaceAllString(emailBody, "")
	matches := postIDURLRe.FindAllString(emailBody, maxPostIDsPerNotificationEmail+1)

	if len(matches) > maxPostIDsPerNotificationEmail {
		return "", &replyToBatchError{Message: batchReplyMessage}
	}

	if len(matches) == 0 {
		return "", errors.New("failed to find postID in email body")
	}

	match := matches[0]
	postID := match[len(match)-26:]
	if !model.IsValidId(postID) {
		return "", errors.Errorf("invalid postID %q", postID)
	}

	return postID, nil
}
