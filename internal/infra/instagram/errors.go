package instagram

import (
	"encoding/json"
	"net/http"
	"strings"

	"thread_broadcast_bot/internal/domain/platform"
)

// apiResponse holds the fields shared by every private API response.
type apiResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	ErrorType string `json:"error_type"`
	Spam      bool   `json:"spam"`
}

// classifyResponse turns a private API response into a platform error, or nil on success.
// A 2xx body that is not JSON is returned as an unclassified error.
func classifyResponse(status int, body []byte) error {
	var r apiResponse
	decodeErr := json.Unmarshal(body, &r)

	if status >= 200 && status < 300 {
		if decodeErr != nil {
			return &decodeError{err: decodeErr}
		}
		if r.Status == "" || r.Status == "ok" {
			return nil
		}
	}

	msg := strings.ToLower(r.Message)
	errType := strings.ToLower(r.ErrorType)
	switch {
	case msg == "login_required" || errType == "login_required":
		return platform.NewError(platform.ErrLoginRequired, status, r.Message, nil)
	case msg == "challenge_required" || errType == "challenge_required" || errType == "checkpoint_challenge_required":
		return platform.NewError(platform.ErrChallengeRequired, status, r.Message, nil)
	case msg == "feedback_required" || errType == "feedback_required":
		return platform.NewError(platform.ErrFeedbackRequired, status, r.Message, nil)
	case errType == "sentry_block" || r.Spam:
		return platform.NewError(platform.ErrSentryBlock, status, r.Message, nil)
	case strings.Contains(msg, "please wait a few minutes"):
		return platform.NewError(platform.ErrPleaseWait, status, r.Message, nil)
	case status == http.StatusTooManyRequests:
		return platform.NewError(platform.ErrRateLimited, status, r.Message, nil)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return platform.NewError(platform.ErrLoginRequired, status, r.Message, nil)
	default:
		return platform.NewError(platform.ErrClient, status, r.Message, nil)
	}
}

type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "decode response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }
