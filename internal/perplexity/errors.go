package perplexity

import (
	"fmt"
	"net/http"
)

// NetworkError wraps a transport failure reaching the API. It is never
// retried here; callers decide whether to retry, switch models, or abort.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling Perplexity API: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx response from the API, carrying the status code and
// body verbatim. Callers discriminate with errors.As, never by message text.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Perplexity API error %d: %s", e.StatusCode, e.Body)
}

// IsRateLimited reports whether the API rejected the call with HTTP 429.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsUnauthorized reports whether the credential was rejected (HTTP 401).
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsServerError reports whether the API itself failed (HTTP 5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}

// Remediation returns a suggested next step for the user, keyed to the
// status class.
func (e *APIError) Remediation() string {
	switch {
	case e.IsRateLimited():
		return "Rate limited. Wait a moment and retry, or switch to a cheaper model."
	case e.IsUnauthorized():
		return "Unauthorized. Check that PERPLEXITY_API_KEY is set and valid."
	case e.IsServerError():
		return "Perplexity service error. Retry shortly; if it persists, try a different model."
	default:
		return "Request rejected. Reformulate the query or adjust the options and retry."
	}
}
