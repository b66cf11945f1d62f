package mailermost

import (
	"fmt"
	"io/ioutil"
	"sync"
	"time"

	imap "github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/mattermost/mattermost-server/v5/plugin"
	"github.com/pkg/errors"
)

const (
	mailboxName          string = "INBOX"
	maxEmailsPerInterval        = 1000

	// SecurityNone selects a plain text IMAP connection. Any other value uses TLS.
	SecurityNone = "none"
	// SecurityTLS selects an IMAP connection over TLS.
	SecurityTLS = "tls"
)

// Poller holds the server configuration values required to poll the IMAP mailbox.
type Poller struct {
	api             plugin.API
	server          string
	security        string
	email           string
	password        string
	pollingInterval int

	stop     chan struct{}
	stopOnce sync.Once
}

// NewPoller creates a new Poller instance.
func NewPoller(api plugin.API, server, security, password string, pollingInterval int) (*Poller, error) {
	if pollingInterval <= 0 {
		return nil, errors.New("pollingInterval must be greater then zero")
	}

	replyTo := api.GetConfig().EmailSettings.ReplyToAddress
	if replyTo == nil || *replyTo == "" {
		return nil, errors.New("EmailSettings.ReplyToAddress must be set to receive email replies")
	}

	p := &Poller{
		api:             api,
		server:          server,
		security:        security,
		email:           *replyTo,
		password:        password,
		pollingInterval: pollingInterval,
		stop:            make(chan struct{}),
	}

	return p, nil
}

// Poll checks the configured email mailbox on the configured interval until Stop is called.
func (p *Poller) Poll() {
	ticker := time.NewTicker(time.Duration(p.pollingInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			if err := p.checkMailbox(); err != nil {
				p.api.LogError("Failed to poll mailbox", "error", err.Error())
			}
		}
	}
}

// Stop ends polling. It is safe to call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
}

func (p *Poller) checkMailbox() error {
	c, err := newIMAPClient(p.server, p.security)
	if err != nil {
		return errors.Wrap(err, "failure connecting to IMAP server")
	}

	if err = c.Login(p.email, p.password); err != nil {
		return errors.Wrapf(err, "failure loging into email for user %q", p.email)
	}
	defer func() {
		if err := c.Logout(); err != nil {
			p.api.LogError("Failed to log out of mailbox", "error", err.Error())
		}
	}()

	mbox, err := c.Select(mailboxName, false)
	if err != nil {
		return errors.Wrapf(err, "failed to get mailbox %q", mailboxName)
	}
	if mbox.Messages == 0 {
		return nil
	}

	to := mbox.Messages
	if to > maxEmailsPerInterval {
		to = maxEmailsPerInterval
	}

	seqset := new(imap.SeqSet)
	seqset.AddRange(1, to)

	messages := make(chan *imap.Message, maxEmailsPerInterval)
	done := make(chan error, 1)
	section := &imap.BodySectionName{}
	go func() {
		done <- c.Fetch(seqset, []imap.FetchItem{section.FetchItem(), imap.FetchEnvelope}, messages)
	}()

	processed := new(imap.SeqSet)
	for msg := range messages {
		if p.processEmail(msg, section) {
			processed.AddNum(msg.SeqNum)
		}
	}

	if err := <-done; err != nil {
		return errors.Wrap(err, "failed to fetch emails")
	}

	return p.deleteMessages(c, processed)
}

func newIMAPClient(addr, security string) (*client.Client, error) {
	if security == SecurityNone {
		return client.Dial(addr)
	}
	return client.DialTLS(addr, nil)
}

// processEmail posts the reply carried by msg and reports whether the email
// should be removed from the mailbox.
func (p *Poller) processEmail(msg *imap.Message, section *imap.BodySectionName) bool {
	messageID := ""
	if msg.Envelope != nil {
		messageID = msg.Envelope.MessageId
	}

	r := msg.GetBody(section)
	if r == nil {
		p.api.LogError(fmt.Sprintf("failed to get message body of email %s", messageID))
		return false
	}

	raw, err := ioutil.ReadAll(r)
	if err != nil {
		p.api.LogError(fmt.Sprintf("failed to read email %s: %s", messageID, err.Error()))
		return false
	}

	keep, err := p.postReply(raw, msg.Envelope)
	if err != nil {
		p.api.LogError(fmt.Sprintf("failed to post reply from email %s: %s", messageID, err.Error()))
	}

	return !keep
}

func (p *Poller) deleteMessages(c *client.Client, seqset *imap.SeqSet) error {
	if seqset.Empty() {
		return nil
	}

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{imap.DeletedFlag}
	if err := c.Store(seqset, item, flags, nil); err != nil {
		return errors.Wrapf(err, "failed to set deleted flag on emails %s", seqset)
	}

	if err := c.Expunge(nil); err != nil {
		return errors.Wrap(err, "failed to expunge deleted emails")
	}

	return nil
}
