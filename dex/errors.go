// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package dex

// ErrorKind is a constant error, declared as
// const ErrSomething = dex.ErrorKind("message"). The message is shown to users
// as-is.
type ErrorKind string

func (e ErrorKind) Error() string {
	return string(e)
}

// Error adds a detail, usually the offending input, to an error kind. It
// unwraps to the kind, so errors.Is matches the sentinel.
type Error struct {
	Kind   error
	Detail string
}

func (e Error) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Detail
}

func (e Error) Unwrap() error {
	return e.Kind
}

// NewError pairs the kind with the detail.
func NewError(kind error, detail string) Error {
	return Error{Kind: kind, Detail: detail}
}

// ErrorCloser undoes a multi-step startup that fails part way. Each step that
// succeeds registers its cleanup with Add. Done runs the cleanups in reverse
// order unless Success was called first.
type ErrorCloser struct {
	closers []func() error
}

func NewErrorCloser() *ErrorCloser {
	return new(ErrorCloser)
}

func (e *ErrorCloser) Add(closer func() error) {
	e.closers = append(e.closers, closer)
}

// Success drops the registered cleanups.
func (e *ErrorCloser) Success() {
	e.closers = nil
}

func (e *ErrorCloser) Done(log Logger) {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			log.Errorf("Shutdown step %d failed: %v", i, err)
		}
	}
	e.closers = nil
}
