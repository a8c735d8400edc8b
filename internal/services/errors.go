package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/kino/internal/shared"
)

// NetworkErrorMessage is shown when no HTTP response was received.
const NetworkErrorMessage = "Network Error"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// FieldIssue is one entry of a validation error returned by the API.
type FieldIssue struct {
	Field   string
	Message string
}

// APIError is a failed API call. Status is 0 when the request never got a response.
//
// It unwraps to the sentinel matching its status so callers can test with
// [errors.Is]: [shared.ErrNotAuthenticated], [shared.ErrNotFound],
// [shared.ErrValidation], [shared.ErrNetwork] or [shared.ErrAPIRequest].
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
	Fields  []FieldIssue
	cause   error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// Unwrap exposes the status sentinel and, for network failures, the transport error.
func (e *APIError) Unwrap() []error {
	errs := []error{e.sentinel()}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

func (e *APIError) sentinel() error {
	switch e.Status {
	case 0:
		return shared.ErrNetwork
	case http.StatusUnauthorized, http.StatusForbidden:
		return shared.ErrNotAuthenticated
	case http.StatusNotFound:
		return shared.ErrNotFound
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return shared.ErrValidation
	default:
		return shared.ErrAPIRequest
	}
}

// Network reports whether the failure happened before any response arrived.
func (e *APIError) Network() bool { return e.Status == 0 }

// StatusOf returns the HTTP status carried by err, 0 for network failures or non-API errors.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// MessageOf returns the server supplied message, or err's text for other errors.
func MessageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func networkError(method, path string, cause error) *APIError {
	return &APIError{Method: method, Path: path, Message: NetworkErrorMessage, cause: cause}
}

// newAPIError reads a FastAPI error body: {"detail": "text"} or {"detail": [{"loc": [...], "msg": "..."}]}.
func newAPIError(method, path string, resp *http.Response) *APIError {
	apiErr := &APIError{Method: method, Path: path, Status: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var envelope struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil {
		apiErr.Message, apiErr.Fields = parseDetail(envelope.Detail)
		if apiErr.Message == "" {
			apiErr.Message = envelope.Message
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func parseDetail(raw json.RawMessage) (string, []FieldIssue) {
	if len(raw) == 0 {
		return "", nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}

	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return "", nil
	}

	issues := make([]FieldIssue, 0, len(items))
	msgs := make([]string, 0, len(items))
	for _, item := range items {
		field := ""
		if n := len(item.Loc); n > 0 {
			field = fmt.Sprint(item.Loc[n-1])
		}
		issues = append(issues, FieldIssue{Field: field, Message: item.Msg})
		if field != "" {
			msgs = append(msgs, field+": "+item.Msg)
		} else {
			msgs = append(msgs, item.Msg)
		}
	}
	return strings.Join(msgs, "; "), issues
}
