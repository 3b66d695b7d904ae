package dubbing

import "fmt"

// AuthError — bad or missing credential. Fatal, never retried.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return "speechlab auth: " + e.Message
}

// ValidationError — bad input, either rejected locally or by the API.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// NotFoundError — unknown project or resource.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return "not found: " + e.Resource
}

// InvalidStateError — operation attempted out of lifecycle order.
type InvalidStateError struct {
	ProjectID string
	Op        string
	State     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("project %s: cannot %s in state %q", e.ProjectID, e.Op, e.State)
}

// TransientNetworkError — transport-level failure. The caller may retry;
// this module never does.
type TransientNetworkError struct {
	Err error
}

func (e *TransientNetworkError) Error() string {
	return "network: " + e.Err.Error()
}

func (e *TransientNetworkError) Unwrap() error {
	return e.Err
}

// ServerError — 5xx-class response, with the server message when present.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
}

// TimeoutError — WaitUntilComplete gave up before a terminal status.
// Carries the last status seen.
type TimeoutError struct {
	ProjectID  string
	LastStatus JobStatus
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("project %s: timed out waiting for completion (last status %q, progress %d%%)",
		e.ProjectID, e.LastStatus.Status, e.LastStatus.Progress)
}
