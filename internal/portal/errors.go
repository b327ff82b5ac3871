package portal

import (
	"fmt"
	"net/http"
)

// QueryError describes a failed query against the portal API. Status is
// the HTTP status of the rejected request; a Status of zero means the
// request never produced a response (transport failure, cancellation).
type QueryError struct {
	Err      error
	Endpoint string
	Page     int
	Status   int
}

func (e *QueryError) Error() string {
	switch {
	case e.Status == 0:
		return fmt.Sprintf("portal: %s page %d: %v", e.Endpoint, e.Page, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("portal: %s page %d (status %d): %v", e.Endpoint, e.Page, e.Status, e.Err)
	default:
		return fmt.Sprintf("portal: %s page %d: unexpected status %d", e.Endpoint, e.Page, e.Status)
	}
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is transient enough to be worth
// another attempt.
func (e *QueryError) Retryable() bool {
	return e.Status == 0 || e.Status == http.StatusTooManyRequests || e.Status >= 500
}
