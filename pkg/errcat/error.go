package errcat

import "fmt"

// Error is a failure tagged with a catalog code. Detail carries the
// situation-specific part of the message (colliding key, statement text,
// provider error) and Cause the underlying error, if any.
type Error struct {
	ErrCode string
	Detail  string
	Cause   error
}

func (e *Error) Error() string {
	entry, err := Lookup(e.ErrCode)
	desc := notFoundDescription
	if err == nil {
		desc = entry.Description
	}
	switch {
	case e.Detail != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", desc, e.Detail, e.Cause)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", desc, e.Detail)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", desc, e.Cause)
	}
	return desc
}

func (e *Error) Code() string {
	return e.ErrCode
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds a catalog-tagged error.
func New(code, detail string) *Error {
	return &Error{ErrCode: code, Detail: detail}
}

// Wrap builds a catalog-tagged error around a cause.
func Wrap(code, detail string, cause error) *Error {
	return &Error{ErrCode: code, Detail: detail, Cause: cause}
}

// Is lets errors.Is match two catalog errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.ErrCode == e.ErrCode
}
