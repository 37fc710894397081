// Package fakeadapter records outbound chat messages for tests.
package fakeadapter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"intakeform/pkg/ports/botport"
)

const opSendMessage = "send_message"

// FakeAdapter implements botport.BotPort in memory.
type FakeAdapter struct {
	mu            sync.Mutex
	Calls         []Call
	NextMessageID int
	FailNext      map[string]error
}

// Call captures one bot operation.
type Call struct {
	Op        string
	ChatID    int64
	MessageID int
	Text      string
}

var _ botport.BotPort = (*FakeAdapter)(nil)

// SendMessage records a send and returns a synthetic BotMessage.
func (f *FakeAdapter) SendMessage(ctx context.Context, chatID int64, text string) (botport.BotMessage, error) {
	if err := ctx.Err(); err != nil {
		return botport.BotMessage{}, botport.ContextError(opSendMessage, err)
	}
	if err := f.maybeFail(opSendMessage); err != nil {
		return botport.BotMessage{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.NextMessageID == 0 {
		f.NextMessageID = 1
	}
	id := f.NextMessageID
	f.NextMessageID++
	f.Calls = append(f.Calls, Call{Op: opSendMessage, ChatID: chatID, MessageID: id, Text: text})
	return botport.BotMessage{ChatID: chatID, MessageID: id, Transport: "fake", Payload: text}, nil
}

// Fail makes the next call of op return err, wrapped as a BotError when needed.
func (f *FakeAdapter) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailNext == nil {
		f.FailNext = make(map[string]error)
	}
	f.FailNext[op] = err
}

// LastCall returns the most recent call for op.
func (f *FakeAdapter) LastCall(op string) *Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.Calls) - 1; i >= 0; i-- {
		if f.Calls[i].Op == op {
			c := f.Calls[i]
			return &c
		}
	}
	return nil
}

// Count returns how many calls were recorded.
func (f *FakeAdapter) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

func (f *FakeAdapter) maybeFail(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err, ok := f.FailNext[op]
	if !ok {
		return nil
	}
	delete(f.FailNext, op)
	if _, ok := err.(*botport.BotError); ok {
		return err
	}
	return &botport.BotError{Op: op, Code: "fake_error", Wrapped: err}
}

// RateLimited scripts a throttling failure.
func RateLimited(op string, retry time.Duration) *botport.BotError {
	return &botport.BotError{Op: op, Code: botport.CodeRateLimited, RetryAfter: retry, Wrapped: fmt.Errorf("rate limited")}
}
