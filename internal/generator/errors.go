package generator

// invalidRequestError signals request parameters outside the accepted
// ranges for 422 mapping.
type invalidRequestError struct{ msg string }

func (e invalidRequestError) Error() string { return e.msg }

// ErrInvalidRequest constructs an invalidRequestError.
func ErrInvalidRequest(msg string) error { return invalidRequestError{msg: msg} }

// IsInvalidRequest reports whether err indicates an invalid request parameter.
func IsInvalidRequest(err error) bool {
	_, ok := err.(invalidRequestError)
	return ok
}

// notLoadedError signals that no model is available, for 503 mapping.
type notLoadedError struct{}

func (notLoadedError) Error() string { return "model not loaded" }

// ErrNotLoaded constructs a notLoadedError.
func ErrNotLoaded() error { return notLoadedError{} }

// IsNotLoaded reports whether err indicates an unavailable model.
func IsNotLoaded(err error) bool {
	_, ok := err.(notLoadedError)
	return ok
}

// tooBusyError signals queue timeout/overflow for 429 mapping.
type tooBusyError struct{}

func (tooBusyError) Error() string { return "too busy" }

// ErrTooBusy constructs a tooBusyError.
func ErrTooBusy() error { return tooBusyError{} }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	_, ok := err.(tooBusyError)
	return ok
}
