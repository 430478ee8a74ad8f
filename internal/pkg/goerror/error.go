// Package goerror carries the caller-facing side of a failure: a safe message,
// a type and a code that maps to an HTTP status. The underlying cause stays
// reachable through errors.Is and errors.As but is never shown to clients.
package goerror

import (
	"errors"
	"log/slog"
	"net/http"
)

// ErrNotFound is returned by stores when a key holds no value.
var ErrNotFound = errors.New("resource not found")

type Type int

const (
	TypeServer Type = iota
	TypeBusiness
	TypeValidation
)

func (t Type) String() string {
	switch t {
	case TypeValidation:
		return "ERROR_TYPE_VALIDATION"
	case TypeBusiness:
		return "ERROR_TYPE_BUSINESS"
	case TypeServer:
		return "ERROR_TYPE_SERVER"
	default:
		return "ERROR_TYPE_UNKNOWN"
	}
}

// Code is the stable identifier mapped to an HTTP status by StatusCode.
type Code int

const (
	CodeInternal Code = iota
	// CodeInvalidFormat is a request that cannot be parsed or has the wrong shape.
	CodeInvalidFormat
	// CodeInvalidInput is a well-formed request that fails validation rules.
	CodeInvalidInput
	// CodeBadRequest is a request that cannot be honoured in the current state,
	// such as verifying when no code was issued.
	CodeBadRequest
	CodeUnauthorized
	CodeConflict
)

func (c Code) String() string {
	switch c {
	case CodeInvalidFormat:
		return "ERROR_CODE_INVALID_FORMAT"
	case CodeInvalidInput:
		return "ERROR_CODE_INVALID_INPUT"
	case CodeBadRequest:
		return "ERROR_CODE_BAD_REQUEST"
	case CodeUnauthorized:
		return "ERROR_CODE_UNAUTHORIZED"
	case CodeConflict:
		return "ERROR_CODE_CONFLICT"
	default:
		return "ERROR_CODE_INTERNAL"
	}
}

type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

// Error returns the cause when there is one, for logs. Clients get Msg.
func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	if e.msg != "" {
		return e.msg
	}
	return e.code.String()
}

// LogValue renders the error as a group so slog shows type, code and cause.
func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("type", e.errType.String()),
		slog.String("code", e.code.String()),
		slog.String("msg", e.msg),
	}
	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}
	return slog.GroupValue(attrs...)
}

// Msg is the caller-facing message.
func (e *Error) Msg() string {
	return e.msg
}

func (e *Error) Type() Type {
	return e.errType
}

func (e *Error) Code() Code {
	return e.code
}

// Fields maps input fields to validation messages. Nil for other errors.
func (e *Error) Fields() map[string]string {
	return e.fields
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) StatusCode() int {
	switch e.code {
	case CodeInvalidFormat, CodeBadRequest:
		return http.StatusBadRequest
	case CodeInvalidInput:
		return http.StatusUnprocessableEntity
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewServer hides err behind the generic "Internal server error".
func NewServer(err error) error {
	return &Error{err: err, msg: "Internal server error", errType: TypeServer, code: CodeInternal}
}

// NewServerCause is a server error with its own caller-facing message.
func NewServerCause(cause error, msg string) error {
	return &Error{err: cause, msg: msg, errType: TypeServer, code: CodeInternal}
}

func NewBusiness(msg string, code Code) error {
	return &Error{msg: msg, errType: TypeBusiness, code: code}
}

// NewBusinessCause is NewBusiness with cause reachable through errors.Is.
func NewBusinessCause(cause error, msg string, code Code) error {
	return &Error{err: cause, msg: msg, errType: TypeBusiness, code: code}
}

// NewInvalidInput wraps a validation failure. When err carries per-field
// messages (a Values() map[string]string method) they become Fields.
func NewInvalidInput(err error) error {
	e := &Error{err: err, msg: "Validation error", errType: TypeValidation, code: CodeInvalidInput}

	var fv interface{ Values() map[string]string }
	if errors.As(err, &fv) {
		e.fields = fv.Values()
	}
	return e
}

// NewInvalidFormat reports an unparsable request. msg defaults to
// "Invalid request body".
func NewInvalidFormat(msg ...string) error {
	e := &Error{msg: "Invalid request body", errType: TypeValidation, code: CodeInvalidFormat}
	if len(msg) > 0 && msg[0] != "" {
		e.msg = msg[0]
	}
	return e
}
