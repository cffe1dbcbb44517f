package qa

import (
	"context"

	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/docindex"
)

// Session is a stateful conversation against a single document. It
// keeps the sliding exchange window between calls so follow-up
// questions can build on earlier answers. A Session is not safe for
// concurrent use; open one session per conversation.
type Session struct {
	engine  *Engine
	entry   *docindex.Entry
	history core.Window
}

// NewSession opens a conversation against source, building its index
// if the cache does not already hold one.
func (e *Engine) NewSession(ctx context.Context, source string) (*Session, error) {
	entry, err := e.entry(ctx, source)
	if err != nil {
		return nil, err
	}
	return &Session{engine: e, entry: entry}, nil
}

// Ask answers one question within the running conversation and records
// the exchange in the session window. Canned "not found" answers are
// recorded too, so the generator sees the conversation the user saw.
func (s *Session) Ask(ctx context.Context, question string) (*Result, error) {
	res, err := s.engine.answer(ctx, s.entry, question, s.history)
	if err != nil {
		return nil, err
	}
	s.history = s.history.
		Append(core.RoleUser, question).
		Append(core.RoleAssistant, res.Answer).
		Trim(s.engine.exchangeWindow)
	return res, nil
}

// History returns the conversation window accumulated so far.
func (s *Session) History() core.Window {
	return s.history
}

// Source returns the identifier of the document this session answers
// questions about.
func (s *Session) Source() string {
	return s.entry.Source
}
