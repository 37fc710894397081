// Package telegramadapter implements botport.BotPort on top of the Telegram client.
package telegramadapter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"intakeform/pkg/bot"
	"intakeform/pkg/ports/botport"
)

const opSendMessage = "send_message"

// Logger defines the minimal logging interface used by the adapter.
type Logger interface {
	Printf(format string, args ...any)
}

type telegramClient interface {
	SendText(chatID int64, text string) (tgbotapi.Message, error)
}

// Adapter wraps a Telegram client and satisfies botport.BotPort.
type Adapter struct {
	client telegramClient
	logger Logger
}

var _ telegramClient = (*bot.Client)(nil)
var _ botport.BotPort = (*Adapter)(nil)

// New constructs an adapter; a nil logger falls back to the standard logger.
func New(client telegramClient, logger Logger) (*Adapter, error) {
	if client == nil {
		return nil, fmt.Errorf("telegramadapter: client is nil")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{client: client, logger: logger}, nil
}

// SendMessage dispatches a Telegram message and returns the delivered record.
func (a *Adapter) SendMessage(ctx context.Context, chatID int64, text string) (botport.BotMessage, error) {
	if err := ctx.Err(); err != nil {
		return botport.BotMessage{}, botport.ContextError(opSendMessage, err)
	}
	msg, err := a.client.SendText(chatID, text)
	if err != nil {
		wrapped := wrapTelegramError(opSendMessage, err)
		a.logger.Printf("botport op=%s chat_id=%d code=%s error=%v", opSendMessage, chatID, codeOf(wrapped), err)
		return botport.BotMessage{}, wrapped
	}
	bm := botport.BotMessage{
		ChatID:    chatID,
		MessageID: msg.MessageID,
		Transport: "telegram",
		Payload:   msg.Text,
	}
	if msg.Chat != nil {
		bm.ChatID = msg.Chat.ID
	}
	a.logger.Printf("botport op=%s chat_id=%d message_id=%d", opSendMessage, bm.ChatID, bm.MessageID)
	return bm, nil
}

func wrapTelegramError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return botport.ContextError(op, err)
	}
	code, retry := classifyTelegramError(err)
	return &botport.BotError{Op: op, Code: code, RetryAfter: retry, Wrapped: err}
}

var retryAfterRegex = regexp.MustCompile(`(?i)retry after (\d+)`)

func classifyTelegramError(err error) (string, time.Duration) {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "too many requests"):
		return botport.CodeRateLimited, extractRetryAfter(msg)
	case strings.Contains(msg, "bad request"):
		return botport.CodeBadRequest, 0
	case strings.Contains(msg, "forbidden"):
		return botport.CodeForbidden, 0
	default:
		return botport.CodeUnknown, 0
	}
}

func extractRetryAfter(msg string) time.Duration {
	matches := retryAfterRegex.FindStringSubmatch(msg)
	if len(matches) != 2 {
		return 0
	}
	seconds, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func codeOf(err error) string {
	var be *botport.BotError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
