package tts

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnknownBackend is returned by Registry.New for an unregistered name.
	ErrUnknownBackend = errors.New("unknown TTS backend")

	// ErrDuplicateBackend is returned when a name is registered twice.
	ErrDuplicateBackend = errors.New("TTS backend already registered")

	// ErrNotInitialized is returned when audio is requested before a
	// successful Initialize.
	ErrNotInitialized = errors.New("TTS backend not initialized")

	// ErrGenerationFailed is returned when a backend produced no audio.
	ErrGenerationFailed = errors.New("audio generation failed")

	// ErrEmptyText is returned when asked to speak blank text.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrBinaryNotFound is returned when a backend's executable is missing.
	ErrBinaryNotFound = errors.New("TTS binary not found in PATH")
)

// Severity indicates how serious an error is for the reading session.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	// SeverityCritical errors disable speech for the session.
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Error is a backend error with the context needed to log and display it.
type Error struct {
	Err       error
	Backend   string
	Action    string
	Severity  Severity
	Timestamp time.Time
	Context   map[string]any
}

// NewError wraps err for backend and action with SeverityError.
func NewError(err error, backend, action string) *Error {
	return &Error{
		Err:       err,
		Backend:   backend,
		Action:    action,
		Severity:  SeverityError,
		Timestamp: time.Now(),
	}
}

func (e *Error) Error() string {
	if e.Backend == "" {
		return fmt.Sprintf("%s: %v", e.Action, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Backend, e.Action, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithSeverity sets the severity and returns e.
func (e *Error) WithSeverity(s Severity) *Error {
	e.Severity = s
	return e
}

// WithContext adds a key/value pair and returns e.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// IsRecoverable reports whether the session can keep using the backend.
func (e *Error) IsRecoverable() bool {
	return e.Severity < SeverityCritical
}

// IsRecoverable reports whether err allows speech to continue. Errors that
// are not *Error are treated as per-sentence failures.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}
	var te *Error
	if errors.As(err, &te) {
		return te.IsRecoverable()
	}
	return !errors.Is(err, ErrBinaryNotFound) && !errors.Is(err, ErrUnknownBackend)
}
