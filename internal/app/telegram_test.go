package app

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tg "github.com/m3rciful/lookupbot/core/telegram"
	"github.com/m3rciful/lookupbot/core/telegram/router"
	"github.com/m3rciful/lookupbot/internal/journal"
	"github.com/m3rciful/lookupbot/internal/menu"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

type botAPI struct {
	mu    sync.Mutex
	calls []string
}

func (b *botAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, _ = io.Copy(io.Discard, r.Body)
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	b.mu.Lock()
	b.calls = append(b.calls, method)
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if method == "answerCallbackQuery" {
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
		return
	}
	_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":10,"type":"private"}}}`))
}

func (b *botAPI) methods() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func offlineBot(t *testing.T) (*tele.Bot, *botAPI) {
	t.Helper()
	api := &botAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	bot, err := tele.NewBot(tele.Settings{URL: srv.URL, Token: "1:test", Offline: true})
	require.NoError(t, err)
	return bot, api
}

func message(text string) tele.Update {
	return tele.Update{ID: 1, Message: &tele.Message{
		ID:     3,
		Text:   text,
		Chat:   &tele.Chat{ID: 10, Type: tele.ChatPrivate},
		Sender: &tele.User{ID: 42, Username: "alice"},
	}}
}

func TestUnknownTextResolvesReplyLabels(t *testing.T) {
	bot, api := offlineBot(t)
	h, j := setup(t, menu.KeyboardReply, menu.ImageActions(), stubLookuper{
		menu.ActionFact: {Text: "🐱 Факт о котах:\nCats purr."},
	})
	b := Bind(h)

	require.NoError(t, b.UnknownText()(bot.NewContext(message("Факт о котах"))))
	require.NoError(t, b.UnknownText()(bot.NewContext(message("Старт"))))
	require.NoError(t, b.UnknownText()(bot.NewContext(message("Курс Bitcoin"))))

	require.Len(t, j.entries, 3)
	assert.Equal(t, journal.Entry{UserID: 42, Handle: "alice", Motion: journal.MotionButton, Action: "fact-lookup", At: fixedNow, Outcome: "🐱 Факт о котах:\nCats purr."}, j.entries[0])
	assert.Equal(t, "start", j.entries[1].Action)
	assert.Equal(t, "NONE", j.entries[2].Action)
	assert.Equal(t, journal.MotionTyping, j.entries[2].Motion)
	assert.Equal(t, []string{"sendMessage", "sendMessage", "sendMessage"}, api.methods())
}

func TestUnknownCallbackAnsweredBeforeJournal(t *testing.T) {
	bot, api := offlineBot(t)
	h, j := setup(t, menu.KeyboardInline, menu.DefaultActions(), nil)

	reg := tg.NewRegistry()
	reg.SetCallbackNotice(UnsupportedNotice)
	var answered []string
	reg.SetCallbackNotFound(func(c tele.Context) error {
		answered = api.methods()
		return Bind(h).UnknownCallback()(c)
	})

	upd := tele.Update{ID: 2, Callback: &tele.Callback{
		ID:      "cb1",
		Unique:  "random-image",
		Sender:  &tele.User{ID: 42},
		Message: &tele.Message{ID: 5, Chat: &tele.Chat{ID: 10}},
	}}
	require.NoError(t, router.CallbackRoute(reg).Handler(bot.NewContext(upd)))

	assert.Equal(t, []string{"answerCallbackQuery"}, answered)
	assert.Equal(t, []string{"answerCallbackQuery"}, api.methods())
	require.Len(t, j.entries, 1)
	assert.Equal(t, journal.MotionButton, j.entries[0].Motion)
	assert.Equal(t, "NONE", j.entries[0].Outcome)
}

func TestUnknownMessageEchoesCaption(t *testing.T) {
	bot, api := offlineBot(t)
	h, j := setup(t, menu.KeyboardReply, menu.DefaultActions(), stubLookuper{})

	upd := message("")
	upd.Message.Caption = "Курс Bitcoin"
	upd.Message.Photo = &tele.Photo{File: tele.File{FileID: "p1"}}
	require.NoError(t, Bind(h).UnknownMessage()(bot.NewContext(upd)))

	require.Len(t, j.entries, 1)
	assert.Equal(t, journal.MotionTyping, j.entries[0].Motion)
	assert.Equal(t, "NONE", j.entries[0].Action)
	assert.Equal(t, []string{"sendMessage"}, api.methods())
}

func TestConversationEditable(t *testing.T) {
	bot, _ := offlineBot(t)

	c := Converse(bot.NewContext(message("hi")))
	assert.False(t, c.Editable())
	assert.Equal(t, User{ID: 42, Username: "alice"}, c.User())

	cb := Converse(bot.NewContext(tele.Update{Callback: &tele.Callback{
		ID:      "x",
		Sender:  &tele.User{ID: 1},
		Message: &tele.Message{ID: 9, Chat: &tele.Chat{ID: 10}, Photo: &tele.Photo{}},
	}}))
	assert.True(t, cb.Editable())
	assert.True(t, cb.ShowsMedia())
}
