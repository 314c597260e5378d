package generation

import (
	"errors"
	"fmt"
)

// State is a step of the generation pipeline
type State string

const (
	StateAuthenticating    State = "authenticating"
	StateValidating        State = "validating"
	StateCharging          State = "charging"
	StateResolvingProvider State = "resolving_provider"
	StateGeneratingContent State = "generating_content"
	StateDesigning         State = "designing_document"
	StateRendering         State = "rendering"
	StatePersisting        State = "persisting"
	StateDone              State = "done"
	StateError             State = "error"
)

// Kind classifies a pipeline failure for the caller
type Kind string

const (
	KindUnauthenticated    Kind = "unauthenticated"
	KindInvalidRequest     Kind = "invalid_request"
	KindInsufficientCredit Kind = "insufficient_credit"
	KindNoProvider         Kind = "no_provider"
	KindBadConfig          Kind = "bad_config"
	KindGenerationFailed   Kind = "generation_failed"
	KindRenderFailed       Kind = "render_failed"
	KindPersistFailed      Kind = "persist_failed"
	KindInternal           Kind = "internal"
)

// ErrUnknownTemplate is returned for a template id not in the catalog
var ErrUnknownTemplate = errors.New("unknown template")

// Error is a classified pipeline failure. State is the step that failed.
type Error struct {
	State State
	Kind  Kind
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("generation %s: %s: %v", e.State, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func fail(state State, kind Kind, err error) *Error {
	return &Error{State: state, Kind: kind, Err: err}
}

// KindOf returns the kind of a pipeline error, or KindInternal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
