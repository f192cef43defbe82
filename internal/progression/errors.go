package progression

import (
	"errors"
	"fmt"
)

// ErrUnknownLesson is returned by surface checks for ids the catalog does
// not contain. CompleteLesson and SubmitQuiz treat unknown ids as no-ops
// instead.
var ErrUnknownLesson = errors.New("unknown lesson")

// Causes carried by the typed errors below, for callers that only need
// errors.Is.
var (
	ErrNoQuiz        = errors.New("lesson has no quiz")
	ErrAnswerCount   = errors.New("answer count does not match questions")
	ErrUnknownAction = errors.New("unknown action")
	ErrLocked        = errors.New("lesson locked")
)

// InputError reports a malformed request, such as a quiz answer sheet of the
// wrong length.
type InputError struct {
	Field   string
	Message string
	Err     error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *InputError) Unwrap() error { return e.Err }

// LockedError reports an attempt to open a lesson whose predecessor has not
// been completed.
type LockedError struct {
	LessonID      string
	PreviousID    string
	PreviousTitle string
	Err           error
}

func (e *LockedError) Error() string {
	return LockedNotice(e.PreviousTitle)
}

func (e *LockedError) Unwrap() error { return e.Err }

// LockedNotice is the message shown for a locked lesson.
func LockedNotice(previousTitle string) string {
	return fmt.Sprintf("Locked — complete \"%s\" to unlock this lesson.", previousTitle)
}
