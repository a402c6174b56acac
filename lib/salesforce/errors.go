package salesforce

import "fmt"

// AuthError marks a request rejected because the bearer token is invalid or
// expired. The client recovers from it exactly once per logical operation;
// a second rejection propagates to the caller unchanged.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("session rejected with status %d", e.StatusCode)
}

// UpstreamError carries a structured CRM error body, or just the status code
// when the body is not recognizable.
type UpstreamError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("request returned status code: %d", e.StatusCode)
}
