package main

import (
	"github.com/blang/semver"
	"github.com/pkg/errors"

	"github.com/mattermost-community/mattermost-plugin-email-reply/server/mailermost"
)

const minimumServerVersion = "5.4.0"

func (p *Plugin) checkServerVersion() error {
	serverVersion, err := semver.Parse(p.API.GetServerVersion())
	if err != nil {
		return errors.Wrap(err, "failed to parse server version")
	}

	r := semver.MustParseRange(">=" + minimumServerVersion)
	if !r(serverVersion) {
		return errors.Errorf("this plugin requires Mattermost v%s or later", minimumServerVersion)
	}

	return nil
}

// OnActivate is invoked when the plugin is activated. It starts polling the
// reply-to mailbox for replies to notification emails.
func (p *Plugin) OnActivate() error {
	if err := p.checkServerVersion(); err != nil {
		return err
	}

	configuration := p.getConfiguration()
	if err := configuration.IsValid(); err != nil {
		return errors.Wrap(err, "invalid plugin configuration")
	}

	poller, err := mailermost.NewPoller(p.API, configuration.Server, configuration.Security, configuration.Password, configuration.PollingInterval)
	if err != nil {
		return errors.Wrap(err, "failed to create poller")
	}

	p.pollerLock.Lock()
	defer p.pollerLock.Unlock()

	p.Poller = poller
	go p.Poller.Poll()

	p.API.LogInfo("Polling for email replies", "server", configuration.Server, "interval", configuration.PollingInterval)

	return nil
}

// OnDeactivate is invoked when the plugin is deactivated. It stops polling.
func (p *Plugin) OnDeactivate() error {
	p.pollerLock.Lock()
	defer p.pollerLock.Unlock()

	if p.Poller != nil {
		p.Poller.Stop()
		p.Poller = nil
	}

	return nil
}
