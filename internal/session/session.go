// Package session holds the conversation state of one assistant
// session: the ordered transcript plus the submit pipeline that turns a
// user prompt into a recorded assistant reply.
package session

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"inkwell/internal/assembler"
	"inkwell/internal/logger"
	"inkwell/internal/skills"
	"inkwell/pkg/inktypes"
)

// Responder routes one submission to a provider and returns the reply
// text. Satisfied by provider.Router.
type Responder interface {
	Route(ctx context.Context, userMessage, contextBlob, instructions string, history []inktypes.Message) (string, error)
}

// Session is a single conversation. One submission runs at a time;
// submissions arriving while one is in flight are dropped, not queued.
type Session struct {
	skills    *skills.Registry
	assembler *assembler.Assembler
	responder Responder
	log       *log.Logger

	busy atomic.Bool

	mu       sync.Mutex
	messages []inktypes.Message
}

// New creates an empty session.
func New(reg *skills.Registry, asm *assembler.Assembler, responder Responder) *Session {
	return &Session{
		skills:    reg,
		assembler: asm,
		responder: responder,
		log:       logger.NewStyledLogger("Session"),
	}
}

// Submit runs one full turn: record the user message, gather skill
// instructions and vault context, call the provider, and record the
// reply. A provider failure still produces an assistant turn carrying
// the error text, so the transcript always alternates.
//
// Blank input and input arriving while a turn is in flight are ignored;
// the returned bool reports whether the submission ran.
func (s *Session) Submit(ctx context.Context, text string) (inktypes.Message, bool) {
	if strings.TrimSpace(text) == "" {
		return inktypes.Message{}, false
	}
	if !s.busy.CompareAndSwap(false, true) {
		s.log.Debug("Submission dropped, another is in flight")
		return inktypes.Message{}, false
	}
	defer s.busy.Store(false)

	// The provider sees the history as it stood before this turn.
	s.mu.Lock()
	history := make([]inktypes.Message, len(s.messages))
	copy(history, s.messages)
	s.messages = append(s.messages, inktypes.NewMessage(inktypes.RoleUser, text))
	s.mu.Unlock()

	var instructions string
	if skill, ok := s.skills.FindMatching(text); ok {
		s.log.Debug("Skill matched", "skill", skill.Name)
		instructions = skill.Instructions
	}

	reply, err := s.responder.Route(ctx, text, s.assembler.Build(), instructions, history)
	if err != nil {
		s.log.Error("Submission failed", "error", err)
		reply = "Error: " + err.Error()
	}

	assistant := inktypes.NewMessage(inktypes.RoleAssistant, reply)
	s.mu.Lock()
	s.messages = append(s.messages, assistant)
	s.mu.Unlock()

	return assistant, true
}

// Messages returns a copy of the transcript in order.
func (s *Session) Messages() []inktypes.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]inktypes.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Clear empties the transcript. An in-flight submission still appends
// its reply afterwards.
func (s *Session) Clear() {
	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()
}
