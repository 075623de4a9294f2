package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Error is the canonical form of a non-success API response. The server uses
// two different error body shapes (a list of validation messages on the
// transaction endpoints, a single string on the auth endpoints); both are
// normalized into this one.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// IsAuthError reports whether err is a 401 from the server, meaning the
// session credential is missing or no longer valid.
func IsAuthError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Message returns the user-facing text for any error coming out of the
// client: the server's first validation message when there is one, a generic
// line for transport failures.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	return "could not reach the server, please try again"
}

// detailBody covers both error shapes: {"detail": "..."} and
// {"detail": [{"msg": "..."}]}.
type detailBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationItem struct {
	Msg string `json:"msg"`
}

func decodeError(resp *http.Response) *Error {
	apiErr := &Error{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("request failed with status %d", resp.StatusCode),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return apiErr
	}

	var outer detailBody
	if err := json.Unmarshal(body, &outer); err != nil || len(outer.Detail) == 0 {
		return apiErr
	}

	var single string
	if err := json.Unmarshal(outer.Detail, &single); err == nil && single != "" {
		apiErr.Message = single
		return apiErr
	}

	var items []validationItem
	if err := json.Unmarshal(outer.Detail, &items); err == nil && len(items) > 0 && items[0].Msg != "" {
		apiErr.Message = items[0].Msg
	}

	return apiErr
}
