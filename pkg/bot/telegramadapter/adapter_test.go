package telegramadapter

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"intakeform/pkg/ports/botport"
)

func TestAdapterSendMessageSuccess(t *testing.T) {
	fc := &fakeClient{
		sendFn: func(chatID int64, text string) (tgbotapi.Message, error) {
			return tgbotapi.Message{
				MessageID: 42,
				Text:      text,
				Chat:      &tgbotapi.Chat{ID: chatID},
			}, nil
		},
	}
	adapter, err := New(fc, testLogger{t})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg, err := adapter.SendMessage(context.Background(), 7, "New lead")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.ChatID != 7 || msg.MessageID != 42 {
		t.Fatalf("unexpected bot message: %+v", msg)
	}
	if msg.Transport != "telegram" {
		t.Fatalf("expected transport 'telegram', got %s", msg.Transport)
	}
	if msg.Payload != "New lead" {
		t.Fatalf("expected payload 'New lead', got %s", msg.Payload)
	}
}

func TestAdapterSendMessageWrapsRateLimitError(t *testing.T) {
	fc := &fakeClient{
		sendFn: func(int64, string) (tgbotapi.Message, error) {
			return tgbotapi.Message{}, errors.New("Too Many Requests: retry after 3")
		},
	}
	adapter, err := New(fc, testLogger{t})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = adapter.SendMessage(context.Background(), 1, "hi")
	if err == nil {
		t.Fatalf("expected error")
	}
	var be *botport.BotError
	if !errors.As(err, &be) {
		t.Fatalf("expected BotError, got %T", err)
	}
	if be.Code != botport.CodeRateLimited {
		t.Fatalf("expected rate_limited code, got %s", be.Code)
	}
	if be.RetryAfter != 3*time.Second {
		t.Fatalf("expected RetryAfter=3s, got %v", be.RetryAfter)
	}
}

func TestAdapterSendMessageClassifiesForbidden(t *testing.T) {
	fc := &fakeClient{
		sendFn: func(int64, string) (tgbotapi.Message, error) {
			return tgbotapi.Message{}, errors.New("Forbidden: bot was blocked by the user")
		},
	}
	adapter, err := New(fc, testLogger{t})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = adapter.SendMessage(context.Background(), 1, "hi")
	if !botport.IsCode(err, botport.CodeForbidden) {
		t.Fatalf("expected forbidden code, got %v", err)
	}
}

func TestAdapterSendMessageHonoursCanceledContext(t *testing.T) {
	called := false
	fc := &fakeClient{
		sendFn: func(int64, string) (tgbotapi.Message, error) {
			called = true
			return tgbotapi.Message{}, nil
		},
	}
	adapter, err := New(fc, testLogger{t})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = adapter.SendMessage(ctx, 1, "hi")
	if !botport.IsCode(err, botport.CodeContextCanceled) {
		t.Fatalf("expected context_canceled, got %v", err)
	}
	if called {
		t.Fatalf("client must not be called with a canceled context")
	}
}

func TestNewRejectsNilClient(t *testing.T) {
	if _, err := New(nil, nil); err == nil {
		t.Fatalf("expected error for nil client")
	}
}

type fakeClient struct {
	sendFn func(chatID int64, text string) (tgbotapi.Message, error)
}

func (f *fakeClient) SendText(chatID int64, text string) (tgbotapi.Message, error) {
	if f.sendFn == nil {
		return tgbotapi.Message{}, nil
	}
	return f.sendFn(chatID, text)
}

type testLogger struct {
	t *testing.T
}

func (l testLogger) Printf(format string, args ...any) {
	l.t.Logf(format, args...)
}
