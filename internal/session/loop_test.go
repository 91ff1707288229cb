package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollyhq/pollycoach/internal/providers/llm"
)

type fakeChat struct {
	reply      string
	err        error
	lastPrompt string
	lastLen    int
}

func (f *fakeChat) Respond(ctx context.Context, history []llm.Message, prompt string) (string, error) {
	f.lastPrompt = prompt
	f.lastLen = len(history)
	return f.reply, f.err
}

func (f *fakeChat) Close() error { return nil }

func TestChatRepliesAndRecordsHistory(t *testing.T) {
	deps := testDeps()
	chat := &fakeChat{reply: "Lead with your strongest point."}
	deps.Chat = chat
	s := newSession("s1", deps)

	s.dispatch(ClientMessage{Type: MsgChat, Message: "How do I open?"})

	events := drainEvents(s)
	require.Len(t, events, 1)
	resp, ok := events[0].(ChatResponse)
	require.True(t, ok)
	assert.Equal(t, "Lead with your strongest point.", resp.Message)

	require.Len(t, s.chatHistory, 2)
	assert.Equal(t, "user", s.chatHistory[0].Role)
	assert.Equal(t, "assistant", s.chatHistory[1].Role)

	assert.True(t, strings.Contains(chat.lastPrompt, "How do I open?"))
	assert.True(t, strings.Contains(chat.lastPrompt, "Polly"))
	assert.Equal(t, 0, chat.lastLen, "first turn has no prior history")
}

func TestChatFallbackOnProviderError(t *testing.T) {
	deps := testDeps()
	deps.Chat = &fakeChat{err: errors.New("model offline")}
	s := newSession("s1", deps)

	s.dispatch(ClientMessage{Type: MsgChat, Message: "hello"})

	events := drainEvents(s)
	require.Len(t, events, 1)
	resp, ok := events[0].(ChatResponse)
	require.True(t, ok)
	assert.Equal(t, chatFallback, resp.Message)
	assert.Len(t, s.chatHistory, 2, "the fallback still enters history")
}

func TestChatFallbackWithoutProvider(t *testing.T) {
	s := newSession("s1", testDeps())

	s.dispatch(ClientMessage{Type: MsgChat, Message: "hello"})

	events := drainEvents(s)
	require.Len(t, events, 1)
	assert.Equal(t, chatFallback, events[0].(ChatResponse).Message)
}

func TestChatIgnoresBlankMessages(t *testing.T) {
	deps := testDeps()
	deps.Chat = &fakeChat{reply: "never sent"}
	s := newSession("s1", deps)

	s.dispatch(ClientMessage{Type: MsgChat, Message: "   "})

	assert.Empty(t, drainEvents(s))
	assert.Empty(t, s.chatHistory)
}

func TestChatHistorySlidingWindow(t *testing.T) {
	deps := testDeps()
	deps.Limits.ChatHistoryMax = 4
	deps.Chat = &fakeChat{reply: "ok"}
	s := newSession("s1", deps)

	for i := 0; i < 5; i++ {
		s.dispatch(ClientMessage{Type: MsgChat, Message: fmt.Sprintf("message %d", i)})
	}
	drainEvents(s)

	require.Len(t, s.chatHistory, 4)
	assert.Equal(t, "message 3", s.chatHistory[0].Content, "oldest turns fall out of the window")
}

func TestUnknownMessageTypeIsIgnored(t *testing.T) {
	s := newSession("s1", testDeps())

	assert.NotPanics(t, func() {
		s.dispatch(ClientMessage{Type: "telemetry"})
	})
	assert.Empty(t, drainEvents(s))
}
