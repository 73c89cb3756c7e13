package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/assembler"
	"inkwell/internal/skills"
	"inkwell/internal/vault"
	"inkwell/pkg/inktypes"
)

type fakeResponder struct {
	mu           sync.Mutex
	calls        atomic.Int32
	reply        string
	err          error
	block        chan struct{} // when set, Route waits on it
	instructions string
	history      []inktypes.Message
}

func (f *fakeResponder) Route(_ context.Context, _, _ string, instructions string, history []inktypes.Message) (string, error) {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.instructions = instructions
	f.history = history
	f.mu.Unlock()
	return f.reply, f.err
}

func newTestSession(responder Responder) *Session {
	store := vault.NewMemStore()
	reg := skills.NewRegistry()
	reg.Load(store, ".inkwell/skills") // falls back to builtins
	return New(reg, assembler.New(store), responder)
}

func TestSubmit_RecordsBothTurns(t *testing.T) {
	responder := &fakeResponder{reply: "hello back"}
	s := newTestSession(responder)

	msg, ok := s.Submit(context.Background(), "hello")

	require.True(t, ok)
	assert.Equal(t, inktypes.RoleAssistant, msg.Role)
	assert.Equal(t, "hello back", msg.Content)

	transcript := s.Messages()
	require.Len(t, transcript, 2)
	assert.Equal(t, inktypes.RoleUser, transcript[0].Role)
	assert.Equal(t, "hello", transcript[0].Content)
	assert.Equal(t, inktypes.RoleAssistant, transcript[1].Role)
}

func TestSubmit_BlankInputIgnored(t *testing.T) {
	responder := &fakeResponder{reply: "x"}
	s := newTestSession(responder)

	_, ok := s.Submit(context.Background(), "   \n")

	assert.False(t, ok)
	assert.Empty(t, s.Messages())
	assert.Zero(t, responder.calls.Load())
}

func TestSubmit_DropsWhileBusy(t *testing.T) {
	responder := &fakeResponder{reply: "slow", block: make(chan struct{})}
	s := newTestSession(responder)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, ok := s.Submit(context.Background(), "first")
		assert.True(t, ok)
	}()

	// Wait for the first submission to reach the provider, then race a
	// second one against it.
	require.Eventually(t, func() bool { return responder.calls.Load() == 1 }, 2*time.Second, time.Millisecond)
	_, ok := s.Submit(context.Background(), "second")
	assert.False(t, ok)

	close(responder.block)
	<-done

	assert.Equal(t, int32(1), responder.calls.Load())
	require.Len(t, s.Messages(), 2)
	assert.Equal(t, "first", s.Messages()[0].Content)
}

func TestSubmit_ErrorBecomesAssistantTurn(t *testing.T) {
	responder := &fakeResponder{err: errors.New("provider down")}
	s := newTestSession(responder)

	msg, ok := s.Submit(context.Background(), "hello")

	require.True(t, ok)
	assert.Equal(t, inktypes.RoleAssistant, msg.Role)
	assert.Equal(t, "Error: provider down", msg.Content)
	assert.Len(t, s.Messages(), 2)
}

func TestSubmit_MatchedSkillSuppliesInstructions(t *testing.T) {
	responder := &fakeResponder{reply: "ok"}
	s := newTestSession(responder)

	_, ok := s.Submit(context.Background(), "please review code in this function")

	require.True(t, ok)
	assert.Contains(t, responder.instructions, "code review")
}

func TestSubmit_HistoryExcludesCurrentTurn(t *testing.T) {
	responder := &fakeResponder{reply: "r"}
	s := newTestSession(responder)

	s.Submit(context.Background(), "one")
	s.Submit(context.Background(), "two")

	// The second call sees only the first exchange.
	require.Len(t, responder.history, 2)
	assert.Equal(t, "one", responder.history[0].Content)
	assert.Equal(t, inktypes.RoleAssistant, responder.history[1].Role)
}

func TestClear(t *testing.T) {
	responder := &fakeResponder{reply: "r"}
	s := newTestSession(responder)

	s.Submit(context.Background(), "hello")
	require.NotEmpty(t, s.Messages())

	s.Clear()
	assert.Empty(t, s.Messages())
}
