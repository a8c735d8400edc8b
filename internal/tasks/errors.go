package tasks

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/desertthunder/kino/internal/services"
	"github.com/desertthunder/kino/internal/shared"
)

// PageError is the page-level failure that replaces a view's content until the next fetch.
type PageError struct {
	Status  int // 0 for network failures
	Message string
	Err     error
}

func (e *PageError) Error() string { return e.Message }

func (e *PageError) Unwrap() error { return e.Err }

// NotFound reports whether the page failed because the resource does not exist.
func (e *PageError) NotFound() bool { return errors.Is(e.Err, shared.ErrNotFound) }

// StatusLabel is the status shown to users: the HTTP code or "Network Error".
func (e *PageError) StatusLabel() string {
	if e.Status == 0 {
		return services.NetworkErrorMessage
	}
	return strconv.Itoa(e.Status)
}

// newPageError classifies err. Not-found failures get notFound as their
// message; everything else gets generic followed by the status label.
func newPageError(err error, notFound, generic string) *PageError {
	pe := &PageError{Status: services.StatusOf(err), Err: err}
	if errors.Is(err, shared.ErrNotFound) && notFound != "" {
		pe.Message = notFound
		return pe
	}
	pe.Message = fmt.Sprintf("%s (Status: %s).", generic, pe.StatusLabel())
	return pe
}
