package chat

import (
	"context"
	"strings"
	"sync"
)

// Session is one conversation about one lesson. Submissions on a session
// are handled one at a time.
type Session struct {
	ID string

	gw *Gateway

	mu       sync.Mutex
	lessonID string
	context  Context
	history  *History
}

// NewSession starts an empty conversation about lessonID.
func NewSession(id string, gw *Gateway, lessonID string) *Session {
	if lessonID == "" {
		lessonID = GeneralLesson
	}
	return &Session{
		ID:       id,
		gw:       gw,
		lessonID: lessonID,
		context:  DetectContext(lessonID),
		history:  NewHistory(MaxTurns),
	}
}

// Send submits message and records both sides on success. Blank messages
// are rejected with *InputError and leave history untouched.
func (s *Session) Send(ctx context.Context, message string) (Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, err := s.gw.Ask(ctx, s.lessonID, s.history.Turns(), message)
	if err != nil {
		return Reply{}, err
	}

	s.history.Append(
		Turn{Sender: SenderUser, Text: strings.TrimSpace(message)},
		Turn{Sender: SenderAI, Text: reply.Text},
	)
	return reply, nil
}

// Greeting is the context default shown before the first message.
func (s *Session) Greeting() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Greeting(s.context)
}

// History returns the remembered turns, oldest first.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Turns()
}

func (s *Session) LessonID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lessonID
}

func (s *Session) Context() Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.context
}

// SwitchLesson moves the session to lessonID. Changing lesson clears the
// history; the same lesson is a no-op.
func (s *Session) SwitchLesson(lessonID string) {
	if lessonID == "" {
		lessonID = GeneralLesson
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if lessonID == s.lessonID {
		return
	}
	s.lessonID = lessonID
	s.context = DetectContext(lessonID)
	s.history.Reset()
}
