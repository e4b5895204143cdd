package types

import (
	"errors"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// ErrorKind classifies failures crossing the client boundary.
type ErrorKind string

const (
	ErrorKindTransport      ErrorKind = "transport"
	ErrorKindMalformedReply ErrorKind = "malformed_reply"
	ErrorKindDecode         ErrorKind = "decode"
	ErrorKindConfiguration  ErrorKind = "configuration"
	ErrorKindRemoteFault    ErrorKind = "remote_fault"
)

// Error tags an errbuilder error with its ErrorKind.
type Error struct {
	Kind ErrorKind
	Code errbuilder.ErrCode
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first tagged error in err's chain, or
// the empty kind when err carries none.
func KindOf(err error) ErrorKind {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	return ""
}

// IsKind reports whether err is tagged with kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

func TransportError(msg string, cause error) error {
	return newKindError(ErrorKindTransport, errbuilder.CodeInternal, msg, cause)
}

func MalformedReplyError(msg string, cause error) error {
	return newKindError(ErrorKindMalformedReply, errbuilder.CodeFailedPrecondition, msg, cause)
}

func DecodeError(field string, msg string, cause error) error {
	return newKindError(ErrorKindDecode, errbuilder.CodeInvalidArgument, fmt.Sprintf("%s: %s", field, msg), cause)
}

func ConfigurationError(msg string) error {
	return newKindError(ErrorKindConfiguration, errbuilder.CodeInvalidArgument, msg, nil)
}

// RemoteFaultError reports a SOAP Fault answered by the service.
func RemoteFaultError(code string, message string) error {
	return newKindError(
		ErrorKindRemoteFault,
		errbuilder.CodeFailedPrecondition,
		fmt.Sprintf("remote fault: %s", message),
		fmt.Errorf("faultcode=%s faultstring=%s", code, message),
	)
}

func newKindError(kind ErrorKind, code errbuilder.ErrCode, msg string, cause error) error {
	builder := errbuilder.New().
		WithCode(code).
		WithMsg(msg)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return &Error{Kind: kind, Code: code, Err: builder}
}
