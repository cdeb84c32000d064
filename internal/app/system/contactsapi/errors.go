package contactsapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from a remote service.
type APIError struct {
	Status  int
	Code    string
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// newAPIError reads the message out of the common error body shapes:
// {"message": ...}, {"error": "..."} and {"error": {"message": ..., "code": ...}}.
func newAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status, Body: body}

	var shape struct {
		Message string          `json:"message"`
		Code    json.RawMessage `json:"code"`
		Error   json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &shape) == nil {
		e.Message = shape.Message
		e.Code = rawString(shape.Code)
		if len(shape.Error) > 0 {
			var s string
			var nested struct {
				Message string          `json:"message"`
				Code    json.RawMessage `json:"code"`
			}
			switch {
			case json.Unmarshal(shape.Error, &s) == nil:
				if e.Message == "" {
					e.Message = s
				}
			case json.Unmarshal(shape.Error, &nested) == nil:
				if e.Message == "" {
					e.Message = nested.Message
				}
				if e.Code == "" {
					e.Code = rawString(nested.Code)
				}
			}
		}
	}

	if strings.TrimSpace(e.Message) == "" {
		e.Message = http.StatusText(status)
		if e.Message == "" {
			e.Message = "unexpected status"
		}
	}
	return e
}

// rawString renders a JSON string or number code as text.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// StatusOf returns the HTTP status of an *APIError in err's chain, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 from a remote service.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// MessageOf returns a message suitable for showing to the user.
func MessageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, ErrNoCredential) {
		return "You are not signed in."
	}
	return "The contacts service could not be reached."
}
