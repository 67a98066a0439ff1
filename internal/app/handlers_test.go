package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m3rciful/lookupbot/internal/journal"
	"github.com/m3rciful/lookupbot/internal/lookup"
	"github.com/m3rciful/lookupbot/internal/menu"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

type sent struct {
	op      string
	text    string
	url     string
	hasKB   bool
	journal int
}

// fakeConversation records outbound calls along with how many rows were journaled before each.
type fakeConversation struct {
	user     User
	text     string
	editable bool
	media    bool
	j        *memJournal
	out      []sent
}

func (f *fakeConversation) Context() context.Context { return context.Background() }
func (f *fakeConversation) User() User               { return f.user }
func (f *fakeConversation) Text() string             { return f.text }
func (f *fakeConversation) Editable() bool           { return f.editable }
func (f *fakeConversation) ShowsMedia() bool         { return f.media }

func (f *fakeConversation) push(s sent) error {
	s.journal = f.j.len()
	f.out = append(f.out, s)
	return nil
}

func (f *fakeConversation) SendText(text string, kb *tele.ReplyMarkup) error {
	return f.push(sent{op: "send", text: text, hasKB: kb != nil})
}
func (f *fakeConversation) EditText(text string, kb *tele.ReplyMarkup) error {
	return f.push(sent{op: "edit", text: text, hasKB: kb != nil})
}
func (f *fakeConversation) SendPhoto(url, caption string, kb *tele.ReplyMarkup) error {
	return f.push(sent{op: "send_photo", text: caption, url: url, hasKB: kb != nil})
}
func (f *fakeConversation) EditPhoto(url, caption string, kb *tele.ReplyMarkup) error {
	return f.push(sent{op: "edit_photo", text: caption, url: url, hasKB: kb != nil})
}
func (f *fakeConversation) Reply(text string) error {
	return f.push(sent{op: "reply", text: text})
}

type memJournal struct {
	mu      sync.Mutex
	entries []journal.Entry
	err     error
}

func (m *memJournal) Append(_ context.Context, e journal.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memJournal) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type stubLookuper map[menu.ActionID]lookup.Result

func (s stubLookuper) Run(_ context.Context, a menu.ActionID) (lookup.Result, error) {
	r, ok := s[a]
	if !ok {
		return lookup.Result{}, menu.ErrUnknownAction
	}
	return r, nil
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T, kind menu.KeyboardKind, actions []menu.ActionID, l stubLookuper) (*Handlers, *memJournal) {
	t.Helper()
	m, err := menu.New(actions, kind)
	require.NoError(t, err)
	j := &memJournal{}
	h, err := NewHandlers(m, l, j, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return h, j
}

func conv(j *memJournal, text string, editable bool) *fakeConversation {
	return &fakeConversation{user: User{ID: 42, Username: "alice"}, text: text, editable: editable, j: j}
}

func TestStartSendsRootPrompt(t *testing.T) {
	h, j := setup(t, menu.KeyboardInline, menu.DefaultActions(), nil)
	c := conv(j, "/start", false)

	require.NoError(t, h.Start(c))
	require.Len(t, j.entries, 1)
	assert.Equal(t, journal.Entry{UserID: 42, Handle: "alice", Motion: journal.MotionTyping, Action: "NONE", At: fixedNow, Outcome: "NONE"}, j.entries[0])

	require.Len(t, c.out, 1)
	assert.Equal(t, sent{op: "send", text: menu.RootPrompt, hasKB: true, journal: 1}, c.out[0])
}

func TestOpenMenuEditsInPlace(t *testing.T) {
	h, j := setup(t, menu.KeyboardInline, menu.DefaultActions(), nil)
	c := conv(j, "", true)

	require.NoError(t, h.OpenMenu(c, journal.MotionButton))
	require.Len(t, j.entries, 1)
	assert.Equal(t, journal.MotionButton, j.entries[0].Motion)
	assert.Equal(t, "start", j.entries[0].Action)
	assert.Equal(t, "", j.entries[0].Outcome)
	assert.Equal(t, []sent{{op: "edit", text: menu.MainPrompt, hasKB: true, journal: 1}}, c.out)
}

func TestOpenMenuReplyKeyboardSends(t *testing.T) {
	h, j := setup(t, menu.KeyboardReply, menu.ImageActions(), nil)
	c := conv(j, "Старт", false)
	require.NoError(t, h.OpenMenu(c, journal.MotionButton))
	assert.Equal(t, "send", c.out[0].op)
}

func TestLookupJournalsOutcomeBeforeReply(t *testing.T) {
	price := "💰 Текущая цена Bitcoin:\nUSD: 1\nGBP: 2\nEUR: 3"
	h, j := setup(t, menu.KeyboardInline, menu.DefaultActions(), stubLookuper{
		menu.ActionPrice: {Text: price, Status: 200},
	})
	c := conv(j, "", true)

	require.NoError(t, h.Lookup(c, menu.ActionPrice, journal.MotionButton))
	require.Len(t, j.entries, 1)
	assert.Equal(t, "price-lookup", j.entries[0].Action)
	assert.Equal(t, price, j.entries[0].Outcome)
	assert.Equal(t, []sent{{op: "edit", text: price, hasKB: true, journal: 1}}, c.out)
}

func TestLookupSlashCommandSendsNewMessage(t *testing.T) {
	h, j := setup(t, menu.KeyboardInline, menu.DefaultActions(), stubLookuper{
		menu.ActionFact: {Text: "Не удалось получить факт о котах.", Failed: true},
	})
	c := conv(j, "/fact", false)

	require.NoError(t, h.Lookup(c, menu.ActionFact, journal.MotionAPI))
	assert.Equal(t, journal.MotionAPI, j.entries[0].Motion)
	assert.Equal(t, "Не удалось получить факт о котах.", j.entries[0].Outcome)
	assert.Equal(t, "send", c.out[0].op)
}

func TestLookupImage(t *testing.T) {
	dog := "https://images.dog.ceo/breeds/akita/1.jpg"
	h, j := setup(t, menu.KeyboardInline, menu.ImageActions(), stubLookuper{
		menu.ActionImage:   {Text: "Случайная собака", MediaURL: dog, Status: 200},
		menu.ActionProfile: {Text: "Случайный пользователь:\nИмя: Mr Bo Li\nEmail: неизвестно\nСтрана: неизвестно"},
	})

	c := conv(j, "", true)
	require.NoError(t, h.Lookup(c, menu.ActionImage, journal.MotionButton))
	assert.Equal(t, dog, j.entries[0].Outcome)
	assert.Equal(t, sent{op: "edit_photo", text: "Случайная собака", url: dog, hasKB: true, journal: 1}, c.out[0])

	// the menu now sits under a photo, so a text result goes out as a new message
	c = conv(j, "", true)
	c.media = true
	require.NoError(t, h.Lookup(c, menu.ActionProfile, journal.MotionButton))
	assert.Equal(t, "send", c.out[0].op)

	c = conv(j, "/image", false)
	require.NoError(t, h.Lookup(c, menu.ActionImage, journal.MotionAPI))
	assert.Equal(t, "send_photo", c.out[0].op)
	assert.Len(t, j.entries, 3)
}

func TestLookupUnknownActionStillJournals(t *testing.T) {
	h, j := setup(t, menu.KeyboardInline, menu.DefaultActions(), stubLookuper{})
	c := conv(j, "", true)
	err := h.Lookup(c, menu.ActionDirectory, journal.MotionButton)
	assert.ErrorIs(t, err, menu.ErrUnknownAction)
	assert.Len(t, j.entries, 1)
	assert.Empty(t, c.out)
}

func TestUnknownEchoesText(t *testing.T) {
	h, j := setup(t, menu.KeyboardInline, menu.DefaultActions(), nil)
	c := conv(j, "xyz", false)

	require.NoError(t, h.Unknown(c))
	require.Len(t, j.entries, 1)
	assert.Equal(t, "NONE", j.entries[0].Action)
	assert.Equal(t, "NONE", j.entries[0].Outcome)
	assert.Equal(t, journal.MotionTyping, j.entries[0].Motion)
	assert.Equal(t, []sent{{op: "reply", text: `Вы написали "xyz", я не знаю такой команды`, journal: 1}}, c.out)
}

func TestUnknownCallbackJournalsOnly(t *testing.T) {
	h, j := setup(t, menu.KeyboardInline, menu.DefaultActions(), nil)
	c := conv(j, "", true)

	require.NoError(t, h.UnknownCallback(c))
	require.Len(t, j.entries, 1)
	assert.Equal(t, journal.MotionButton, j.entries[0].Motion)
	assert.Equal(t, "NONE", j.entries[0].Action)
	assert.Empty(t, c.out)
}

func TestJournalFailureStillReplies(t *testing.T) {
	h, j := setup(t, menu.KeyboardInline, menu.DefaultActions(), nil)
	j.err = errors.New("disk full")
	c := conv(j, "hello", false)

	require.NoError(t, h.Unknown(c))
	require.Len(t, c.out, 1)
	assert.Equal(t, "reply", c.out[0].op)
}

func TestEveryEventOneRow(t *testing.T) {
	h, j := setup(t, menu.KeyboardInline, menu.DefaultActions(), stubLookuper{
		menu.ActionPrice:     {Text: "p"},
		menu.ActionFact:      {Text: "f"},
		menu.ActionDirectory: {Text: "d"},
	})
	events := []func() error{
		func() error { return h.Start(conv(j, "/start", false)) },
		func() error { return h.OpenMenu(conv(j, "", true), journal.MotionButton) },
		func() error { return h.Lookup(conv(j, "", true), menu.ActionPrice, journal.MotionButton) },
		func() error { return h.Lookup(conv(j, "", true), menu.ActionFact, journal.MotionButton) },
		func() error { return h.Lookup(conv(j, "/directory", false), menu.ActionDirectory, journal.MotionAPI) },
		func() error { return h.Unknown(conv(j, "hi", false)) },
		func() error { return h.UnknownCallback(conv(j, "", true)) },
	}
	for _, ev := range events {
		require.NoError(t, ev())
	}
	assert.Len(t, j.entries, len(events))
}

func TestNewHandlersRequiresDeps(t *testing.T) {
	_, err := NewHandlers(nil, stubLookuper{}, &memJournal{})
	assert.Error(t, err)
}
