package model

import (
	"errors"
	"fmt"
)

var (
	ErrCredentialMissingOrMalformed = errors.New("credential missing or malformed")
	ErrSessionDoesNotExist          = errors.New("session does not exist")
	ErrSessionAlreadyExists         = errors.New("session already exists")
	ErrTelegramSessionDoesNotExist  = errors.New("telegram session does not exist")
)

type ErrorKind string

const (
	ErrorKindAuthenticationFailed = ErrorKind("AuthenticationFailed")
	ErrorKindTransportFailure     = ErrorKind("TransportFailure")
	ErrorKindProviderError        = ErrorKind("ProviderError")
)

// ResponseError is a failed model call. Message carries the provider text as is,
// so it can be shown to the user verbatim.
type ResponseError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

func NewResponseError(kind ErrorKind, err error) *ResponseError {
	return &ResponseError{
		Kind:    kind,
		Message: err.Error(),
		Err:     err,
	}
}

// ErrorKindOf returns the kind of a ResponseError in err's chain, or "" if there is none.
func ErrorKindOf(err error) ErrorKind {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.Kind
	}
	return ""
}
