package llm

import (
	"encoding/json"
	"fmt"
)

// snippetLen bounds how much of a rejected response body is kept for logs.
const snippetLen = 200

// ErrTimeout indicates the request exceeded its deadline before the
// provider answered.
type ErrTimeout struct {
	Err error
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("provider timed out: %v", e.Err)
}

func (e *ErrTimeout) Unwrap() error { return e.Err }

// ErrRejected indicates the provider answered with a non-2xx status.
type ErrRejected struct {
	Status      int
	BodySnippet string
	Err         error
}

func (e *ErrRejected) Error() string {
	return fmt.Sprintf("provider rejected request (status %d): %s", e.Status, e.BodySnippet)
}

func (e *ErrRejected) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the model returned content that is not
// valid JSON or does not conform to the requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid model response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// truncate shortens a response body to at most snippetLen bytes.
func truncate(s string) string {
	if len(s) > snippetLen {
		return s[:snippetLen]
	}
	return s
}
