package main

import (
	"testing"

	"github.com/mattermost/mattermost-server/v5/model"
	"github.com/mattermost/mattermost-server/v5/plugin/plugintest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCheckServerVersion(t *testing.T) {
	for version, ok := range map[string]bool{
		"5.4.0":  true,
		"5.20.0": true,
		"6.0.0":  true,
		"5.3.9":  false,
		"4.10.0": false,
	} {
		t.Run(version, func(t *testing.T) {
			api := &plugintest.API{}
			api.On("GetServerVersion").Return(version)

			p := &Plugin{}
			p.SetAPI(api)

			err := p.checkServerVersion()
			if ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}

	t.Run("unparsable version", func(t *testing.T) {
		api := &plugintest.API{}
		api.On("GetServerVersion").Return("not-a-version")

		p := &Plugin{}
		p.SetAPI(api)

		assert.Error(t, p.checkServerVersion())
	})
}

func TestActivateAndDeactivate(t *testing.T) {
	api := &plugintest.API{}
	defer api.AssertExpectations(t)

	config := &model.Config{}
	config.EmailSettings.ReplyToAddress = model.NewString("reply@example.com")
	api.On("GetServerVersion").Return("5.20.0")
	api.On("GetConfig").Return(config)
	api.On("LogInfo", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	p := &Plugin{}
	p.SetAPI(api)
	c := validConfiguration()
	c.PollingInterval = 3600
	p.setConfiguration(c)

	require.NoError(t, p.OnActivate())
	require.NotNil(t, p.Poller)

	require.NoError(t, p.OnDeactivate())
	assert.Nil(t, p.Poller)

	// Deactivating twice is harmless.
	assert.NoError(t, p.OnDeactivate())
}

func TestActivateRejectsInvalidConfiguration(t *testing.T) {
	api := &plugintest.API{}
	api.On("GetServerVersion").Return("5.20.0")

	p := &Plugin{}
	p.SetAPI(api)
	p.setConfiguration(&configuration{})

	assert.Error(t, p.OnActivate())
	assert.Nil(t, p.Poller)
}
