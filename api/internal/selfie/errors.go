package selfie

import "errors"

// Kind classifies a failure for the HTTP layer.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUnavailable
)

var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("image generation service is unavailable")
	ErrInternal    = errors.New("internal generation failure")
)

// Error: ошибка с сообщением для клиента; Err остаётся только в логах.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrUnavailable:
		return e.Kind == KindUnavailable
	case ErrInternal:
		return e.Kind == KindInternal
	}
	return false
}

func notFound(msg string, err error) *Error { return &Error{Kind: KindNotFound, Message: msg, Err: err} }

func internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Failed to generate the image internally.", Err: err}
}

const UnavailableMessage = "Image generation service is not available."

var errUnavailable = &Error{Kind: KindUnavailable, Message: UnavailableMessage}

// KindOf returns the kind of err; anything unclassified is internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Failed to generate the image internally."
}
