package media

import (
	"errors"
	"net/http"
)

// Kind classifies failures so the transport layer can pick a status code.
type Kind int

const (
	// KindStorage covers filesystem failures (disk full, permission denied).
	KindStorage Kind = iota
	// KindInvalid is a client input problem; never retried.
	KindInvalid
	// KindNotFound signals that the referenced object is absent.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	default:
		return "storage"
	}
}

// Error is the tagged error returned by every core operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

var (
	// ErrNoFilesProvided rejects an empty ingestion or deletion batch.
	ErrNoFilesProvided = &Error{Kind: KindInvalid, Err: errors.New("no files provided")}
	// ErrMissingStagedFile is reported when an upload's bytes cannot be opened.
	ErrMissingStagedFile = &Error{Kind: KindInvalid, Err: errors.New("staged file is missing")}
	// ErrMissingPath rejects an empty serve request.
	ErrMissingPath = &Error{Kind: KindInvalid, Err: errors.New("missing path")}
	// ErrInvalidPath is returned when a path escapes the storage root.
	ErrInvalidPath = &Error{Kind: KindInvalid, Err: errors.New("invalid path")}
	// ErrNotFound signals that no physical file exists at the resolved path.
	ErrNotFound = &Error{Kind: KindNotFound, Err: errors.New("file not found")}
)

func storageErr(op string, err error) error {
	return &Error{Kind: KindStorage, Op: op, Err: err}
}

// KindOf reports the kind of err. Untagged errors count as storage failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// StatusFor maps an error to the HTTP status used by the handlers.
func StatusFor(err error) int {
	switch KindOf(err) {
	case KindInvalid:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
