package artefact

import "errors"

// missingFileError signals a required artefact file that is absent on disk.
type missingFileError struct {
	kind string
	path string
}

func (e missingFileError) Error() string { return e.kind + " not found at " + e.path }

func errMissingFile(kind, path string) error { return missingFileError{kind: kind, path: path} }

// IsMissingFile reports whether err indicates an absent artefact file.
func IsMissingFile(err error) bool {
	var e missingFileError
	return errors.As(err, &e)
}

// invalidArtefactError signals an artefact file that exists but cannot be used.
type invalidArtefactError struct {
	msg   string
	cause error
}

func (e invalidArtefactError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e invalidArtefactError) Unwrap() error { return e.cause }

func errInvalid(msg string, cause error) error { return invalidArtefactError{msg: msg, cause: cause} }

// IsInvalidArtefact reports whether err indicates a malformed artefact file.
func IsInvalidArtefact(err error) bool {
	var e invalidArtefactError
	return errors.As(err, &e)
}
