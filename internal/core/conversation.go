package core

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Rorical/katabasis/internal/api"
	"github.com/Rorical/katabasis/internal/models"
	"github.com/Rorical/katabasis/internal/session"
)

// DefaultPersona is the conversational partner the backend knows about.
const DefaultPersona = "guide"

// ChatBackend sends one turn to the remote agent.
type ChatBackend interface {
	Chat(ctx context.Context, token string, req api.ChatRequest) (*api.ChatResponse, error)
}

// TurnOutcome is how a turn ended.
type TurnOutcome int

const (
	TurnIgnored TurnOutcome = iota
	TurnAnswered
	TurnInvalidated
	TurnFailed
)

func (o TurnOutcome) String() string {
	switch o {
	case TurnAnswered:
		return "answered"
	case TurnInvalidated:
		return "invalidated"
	case TurnFailed:
		return "failed"
	default:
		return "ignored"
	}
}

var sendFailedNotice = models.Notice{
	Title:   "Message not sent",
	Message: "Failed to send message. Please try again.",
}

// Conversation runs request/response turns against one persona and owns the
// transcript of the chat view it belongs to.
type Conversation struct {
	backend ChatBackend
	session *session.Session
	effects Effects
	persona string
	log     *zap.Logger

	transcript *Transcript
	pending    Gate
}

type ConversationOption func(*Conversation)

func WithPersona(persona string) ConversationOption {
	return func(c *Conversation) {
		if persona != "" {
			c.persona = persona
		}
	}
}

func WithConversationLogger(log *zap.Logger) ConversationOption {
	return func(c *Conversation) { c.log = log }
}

// NewConversation starts with an empty transcript.
func NewConversation(backend ChatBackend, sess *session.Session, effects Effects, opts ...ConversationOption) *Conversation {
	if effects == nil {
		effects = Discard{}
	}
	c := &Conversation{
		backend:    backend,
		session:    sess,
		effects:    effects,
		persona:    DefaultPersona,
		log:        zap.NewNop(),
		transcript: NewTranscript(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Conversation) Transcript() *Transcript { return c.transcript }

func (c *Conversation) Persona() string { return c.persona }

// Pending reports whether a turn is in flight.
func (c *Conversation) Pending() bool { return c.pending.Pending() }

// Turn is an accepted submission whose request has not been sent yet.
type Turn struct {
	conv *Conversation
	text string
	msg  models.Message
	done atomic.Bool
}

// Message is the user entry appended when the turn was accepted.
func (t *Turn) Message() models.Message { return t.msg }

// Begin accepts a submission. Blank text or a turn already in flight makes
// it a no-op that reports false. Otherwise the user's message is in the
// transcript and the conversation is Pending when Begin returns.
func (c *Conversation) Begin(raw string) (*Turn, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}
	if !c.pending.TryEnter() {
		return nil, false
	}
	msg := c.transcript.Append(models.User, raw)
	return &Turn{conv: c, text: raw, msg: msg}, true
}

// Exchange sends the turn and applies the result. It may only run once; the
// conversation is Idle again when it returns, whatever the outcome.
func (t *Turn) Exchange(ctx context.Context) TurnOutcome {
	if !t.done.CompareAndSwap(false, true) {
		return TurnIgnored
	}
	c := t.conv
	defer c.pending.Leave()

	token, _ := c.session.Token()
	log := c.log.With(zap.Uint64("message_id", t.msg.ID), zap.String("persona", c.persona))

	start := time.Now()
	resp, err := c.backend.Chat(ctx, token, api.ChatRequest{
		Message: t.text,
		NPCName: c.persona,
	})
	switch {
	case err == nil:
		c.transcript.Append(models.Agent, resp.Response)
		log.Debug("turn answered", zap.Duration("elapsed", time.Since(start)))
		return TurnAnswered

	case errors.Is(err, api.ErrUnknownIdentity):
		log.Info("identity not recognized, dropping session")
		if ierr := c.session.Invalidate(); ierr != nil {
			log.Error("session invalidation incomplete", zap.Error(ierr))
		}
		c.effects.Navigate(models.ViewLogin)
		return TurnInvalidated

	default:
		log.Warn("turn failed", zap.Error(err))
		c.effects.Notify(sendFailedNotice)
		return TurnFailed
	}
}

// SubmitTurn is Begin followed by Exchange.
func (c *Conversation) SubmitTurn(ctx context.Context, raw string) TurnOutcome {
	turn, ok := c.Begin(raw)
	if !ok {
		return TurnIgnored
	}
	return turn.Exchange(ctx)
}
