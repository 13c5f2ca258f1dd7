package types

import (
	"errors"
	"fmt"
)

var (
	// Request errors
	ErrEmptyQuery = errors.New("empty country query")

	// Search errors
	ErrSearchFailed = errors.New("no matching country found")
	ErrSearchBusy   = errors.New("a search is already in progress")
	ErrNotFound     = errors.New("country not found")

	// Collaborator errors
	ErrInvalidBaseURL  = errors.New("invalid country API base URL")
	ErrInvalidResponse = errors.New("invalid response from country API")
)

// CollaboratorError wraps a failed call to a remote collaborator
type CollaboratorError struct {
	Collaborator string
	Code         string
	Message      string
	Status       int
	Err          error
}

func (e *CollaboratorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Collaborator, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Collaborator, e.Code, e.Message)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// IsCollaboratorError reports whether err comes from a remote collaborator
func IsCollaboratorError(err error) bool {
	var ce *CollaboratorError
	return errors.As(err, &ce)
}
