package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"nexum/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	calls int
	err   error
}

func (r *recordingNotifier) NotifySuggestions(ctx context.Context, g *models.Group, s []*models.Suggestion) error {
	r.calls++
	return r.err
}

func TestDispatcher(t *testing.T) {
	chat := &recordingNotifier{}
	tg := &recordingNotifier{err: errors.New("offline")}
	d := NewDispatcher(zap.NewNop())
	d.Register(models.ChannelChat, chat)
	d.Register(models.ChannelTelegram, tg)

	group := &models.Group{ID: "g1", Name: "demo"}
	suggestions := []*models.Suggestion{{ID: "s1"}}

	if err := d.Dispatch(context.Background(), models.ChannelChat, group, suggestions); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if err := d.Dispatch(context.Background(), models.ChannelNone, group, suggestions); err != nil {
		t.Fatalf("Dispatch to NONE failed: %v", err)
	}
	if err := d.Dispatch(context.Background(), models.ChannelTelegram, group, suggestions); err == nil {
		t.Error("Expected notifier error to surface")
	}
	if err := d.Dispatch(context.Background(), models.ChannelChat, group, nil); err != nil {
		t.Fatalf("Dispatch with no suggestions failed: %v", err)
	}
	if chat.calls != 1 || tg.calls != 1 {
		t.Errorf("Unexpected calls: chat=%d telegram=%d", chat.calls, tg.calls)
	}

	empty := NewDispatcher(zap.NewNop())
	empty.Register(models.ChannelTelegram, nil)
	if err := empty.Dispatch(context.Background(), models.ChannelTelegram, group, suggestions); err != nil {
		t.Errorf("Expected unregistered channel to be skipped, got %v", err)
	}
}

// fakeTelegram records bot API calls by method name.
type fakeTelegram struct {
	mu     sync.Mutex
	calls  map[string][]string
	server *httptest.Server
}

func newFakeTelegram(t *testing.T) *fakeTelegram {
	f := &fakeTelegram{calls: map[string][]string{}}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

		f.mu.Lock()
		f.calls[method] = append(f.calls[method], r.Form.Get("text")+"|"+r.Form.Get("reply_markup"))
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch method {
		case "getMe":
			w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Nexum","username":"nexum_bot"}}`))
		case "answerCallbackQuery":
			w.Write([]byte(`{"ok":true,"result":true}`))
		default:
			w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"group"},"text":"ok"}}`))
		}
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeTelegram) bot(t *testing.T) *tgbotapi.BotAPI {
	api, err := tgbotapi.NewBotAPIWithClient("token", f.server.URL+"/bot%s/%s", f.server.Client())
	if err != nil {
		t.Fatalf("NewBotAPIWithClient failed: %v", err)
	}
	return api
}

func TestTelegram_NotifySuggestions(t *testing.T) {
	fake := newFakeTelegram(t)
	tg := NewTelegram(fake.bot(t), 42, nil, zap.NewNop())

	start := time.Date(2024, 3, 6, 19, 0, 0, 0, time.UTC)
	suggestions := []*models.Suggestion{
		{ID: "s1", Title: "Meetup: sushi spot A", StartAt: start, EndAt: start.Add(2 * time.Hour), DetailsJSON: `{"url":"https://example.com/a","keywords":["sushi"]}`},
		{ID: "s2", Title: "Meetup: sushi spot B", StartAt: start, EndAt: start.Add(2 * time.Hour)},
	}
	if err := tg.NotifySuggestions(context.Background(), &models.Group{ID: "g", Name: "demo"}, suggestions); err != nil {
		t.Fatalf("NotifySuggestions failed: %v", err)
	}

	sent := fake.calls["sendMessage"]
	if len(sent) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(sent))
	}
	if !strings.Contains(sent[0], "Meetup: sushi spot A") || !strings.Contains(sent[0], "https://example.com/a") {
		t.Errorf("Unexpected message: %s", sent[0])
	}
	if !strings.Contains(sent[0], "accept:s1") || !strings.Contains(sent[0], "reschedule:s1") {
		t.Errorf("Expected action buttons, got %s", sent[0])
	}
}

func TestTelegram_NotifyWithoutChat(t *testing.T) {
	fake := newFakeTelegram(t)
	tg := NewTelegram(fake.bot(t), 0, nil, zap.NewNop())
	if err := tg.NotifySuggestions(context.Background(), &models.Group{}, []*models.Suggestion{{ID: "s"}}); err == nil {
		t.Error("Expected error without chat id")
	}
}

type fakeApplier struct {
	id, action string
}

func (f *fakeApplier) ApplyAction(ctx context.Context, id, action string) (*models.Suggestion, error) {
	f.id, f.action = id, action
	if action == "bogus" {
		return nil, errors.New("invalid action")
	}
	return &models.Suggestion{ID: id, Status: models.StatusAccepted}, nil
}

func TestTelegram_HandleCallbackQuery(t *testing.T) {
	fake := newFakeTelegram(t)
	applier := &fakeApplier{}
	tg := NewTelegram(fake.bot(t), 42, applier, zap.NewNop())

	query := &tgbotapi.CallbackQuery{
		ID:   "q1",
		From: &tgbotapi.User{ID: 5},
		Data: "accept:s1",
		Message: &tgbotapi.Message{
			MessageID: 7,
			Chat:      &tgbotapi.Chat{ID: 42},
			Text:      "📍 Meetup: sushi spot A",
		},
	}
	tg.handleCallbackQuery(context.Background(), query)

	if applier.id != "s1" || applier.action != "accept" {
		t.Errorf("Unexpected action applied: %+v", applier)
	}
	if len(fake.calls["answerCallbackQuery"]) != 1 {
		t.Error("Expected callback to be answered")
	}
	edits := fake.calls["editMessageText"]
	if len(edits) != 1 || !strings.Contains(edits[0], "ACCEPTED") {
		t.Errorf("Expected message edited with new status, got %v", edits)
	}

	query.Data = "nonsense"
	tg.handleCallbackQuery(context.Background(), query)
	if applier.action != "accept" {
		t.Error("Malformed data must not reach the applier")
	}
}
