package telegram

import (
	"errors"
	"testing"
	"time"

	"github.com/m3rciful/lookupbot/core/telegram/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegisterCommandValidation(t *testing.T) {
	reg := NewRegistry()

	require.Error(t, reg.RegisterCommand("price", commands.Command{Handler: noop}))
	require.Error(t, reg.RegisterCommand("/price", commands.Command{}))
	require.NoError(t, reg.RegisterCommand("/price", commands.Command{Handler: noop, Aliases: []string{"💰 Bitcoin"}}))

	err := reg.RegisterCommand("/price", commands.Command{Handler: noop})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	err = reg.RegisterCommand("/fact", commands.Command{Handler: noop, Aliases: []string{"💰 Bitcoin"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alias")
	assert.Equal(t, 1, reg.CommandCount())
}

func TestLookupCommandExactAndAlias(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCommand("/fact", commands.Command{Handler: noop, Aliases: []string{"🐱 Cat fact"}}))

	name, _, ok := reg.LookupCommand("/fact")
	require.True(t, ok)
	assert.Equal(t, "/fact", name)

	name, _, ok = reg.LookupCommand("🐱 Cat fact")
	require.True(t, ok)
	assert.Equal(t, "/fact", name)

	for _, text := range []string{"/fact please", "/FACT", "fact", ""} {
		_, _, ok := reg.LookupCommand(text)
		assert.False(t, ok, text)
	}
}

func TestListCommandsSkipsHidden(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Open the menu"}))
	require.NoError(t, reg.RegisterCommand("/fact", commands.Command{Handler: noop, Description: "Cat fact"}))
	require.NoError(t, reg.RegisterCommand("/debug", commands.Command{Handler: noop, Description: "internal", Hidden: true}))
	require.NoError(t, reg.RegisterCommand("/quiet", commands.Command{Handler: noop}))

	visible := reg.ListCommands(true)
	require.Len(t, visible, 2)
	assert.Equal(t, "fact", visible[0].Text)
	assert.Equal(t, "start", visible[1].Text)

	assert.Len(t, reg.ListCommands(false), 4)
}

func TestRegisterCallback(t *testing.T) {
	reg := NewRegistry()
	require.Error(t, reg.RegisterCallback("", noop))
	require.NoError(t, reg.RegisterCallback("price-lookup", noop))
	require.Error(t, reg.RegisterCallback("price-lookup", noop))
	require.NoError(t, reg.RegisterCallback("fact-lookup", noop))

	_, ok := reg.GetCallback("price-lookup")
	assert.True(t, ok)
	_, ok = reg.GetCallback("weather")
	assert.False(t, ok)
	assert.Equal(t, []string{"fact-lookup", "price-lookup"}, reg.ListCallbacks())
}

func TestFallbackSetters(t *testing.T) {
	reg := NewRegistry()
	assert.NotNil(t, reg.CallbackNotFound())
	assert.Nil(t, reg.TextFallback())
	assert.Nil(t, reg.MessageFallback())
	assert.Equal(t, DefaultCallbackNotice, reg.CallbackNotice())
	reg.SetCallbackNotice("Кнопка устарела")
	assert.Equal(t, "Кнопка устарела", reg.CallbackNotice())

	called := false
	reg.SetTextFallback(func(tele.Context) error { called = true; return nil })
	require.NoError(t, reg.TextFallback()(nil))
	assert.True(t, called)

	reg.SetCallbackNotFound(nil)
	assert.NotNil(t, reg.CallbackNotFound())
}

type fakeCommandSetter struct {
	got []tele.Command
	err error
}

func (f *fakeCommandSetter) SetCommands(opts ...interface{}) error {
	for _, o := range opts {
		if list, ok := o.([]tele.Command); ok {
			f.got = list
		}
	}
	return f.err
}

func TestSetupCommandsPublishesVisible(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Open the menu"}))
	require.NoError(t, reg.RegisterCommand("/hidden", commands.Command{Handler: noop, Description: "x", Hidden: true}))

	setter := &fakeCommandSetter{}
	SetupCommands(setter, reg)
	require.Len(t, setter.got, 1)
	assert.Equal(t, "start", setter.got[0].Text)

	// errors are logged, not propagated
	SetupCommands(&fakeCommandSetter{err: errors.New("forbidden")}, reg)
	SetupCommands(setter, nil)
}

func TestBuildPollerByRunMode(t *testing.T) {
	p := BuildPoller(PollerOptions{RunMode: "webhook", Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://bot.example.org/hook"}})
	wh, ok := p.(*tele.Webhook)
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0:8443", wh.Listen)
	assert.Equal(t, "https://bot.example.org/hook", wh.Endpoint.PublicURL)

	p = BuildPoller(PollerOptions{RunMode: "longpoll"})
	lp, ok := p.(*tele.LongPoller)
	require.True(t, ok)
	assert.Equal(t, defaultLongPollTimeout, lp.Timeout)
}

func TestBuildHTTPClientTimeoutExceedsPoll(t *testing.T) {
	c := BuildHTTPClient(time.Minute)
	assert.Greater(t, c.Timeout, time.Minute)
	assert.Equal(t, defaultClientTimeout, BuildHTTPClient(0).Timeout)
}
