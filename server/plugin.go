package main

import (
	"sync"

	"github.com/mattermost/mattermost-server/v5/plugin"

	"github.com/mattermost-community/mattermost-plugin-email-reply/server/mailermost"
)

// Plugin is the object to run the plugin
type Plugin struct {
	plugin.MattermostPlugin

	// pollerLock synchronizes access to Poller between activation and deactivation.
	pollerLock sync.Mutex

	// Poller checks the reply-to mailbox while the plugin is active.
	Poller *mailermost.Poller

	// configurationLock synchronizes access to the configuration.
	configurationLock sync.RWMutex

	// configuration is the active plugin configuration. Consult getConfiguration and
	// setConfiguration for usage.
	configuration *configuration
}
