// Package apperr is the closed set of failures the user service reports.
// Handlers translate a Kind into an HTTP status; nothing else inspects
// error text.
package apperr

import "errors"

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindDuplicate
	KindNotFound
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicate:
		return "duplicate"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

const (
	MsgNotFound  = "User not found"
	MsgDuplicate = "Email already exists"
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

func Duplicate(err error) error {
	return &Error{Kind: KindDuplicate, Msg: MsgDuplicate, Err: err}
}

func NotFound() error {
	return &Error{Kind: KindNotFound, Msg: MsgNotFound}
}

// Storage wraps a driver failure, msg names the operation that failed.
func Storage(err error, msg string) error {
	return &Error{Kind: KindStorage, Msg: msg, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message is the text shown to API clients. Duplicate errors hide the
// driver detail.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindDuplicate {
		return e.Msg
	}
	return err.Error()
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsDuplicate(err error) bool  { return KindOf(err) == KindDuplicate }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsStorage(err error) bool    { return KindOf(err) == KindStorage }
