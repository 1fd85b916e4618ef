// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

var (
	// ErrCampaignActive is returned when a campaign run is already active or still winding down.
	ErrCampaignActive = errors.New("a campaign is already in progress")

	// ErrNoMessageVariants is returned when every supplied message is blank.
	ErrNoMessageVariants = errors.New("provide at least one message")

	// ErrNothingToStop is returned by a stop request while no campaign is active.
	ErrNothingToStop = errors.New("no active campaign to stop")

	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("not found")

	// ErrNoParticipants is returned by a drawing with nobody enrolled.
	ErrNoParticipants = errors.New("no participants enrolled")

	// ErrMissingCredentials is returned by the messaging client when it is not configured.
	ErrMissingCredentials = errors.New("messaging credentials not configured")
)

// NotFoundError reports a missing resource by kind and ID
type NotFoundError struct {
	Resource string
	ID       int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Helper constructor
func NewNotFound(resource string, id int) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// SendError describes a failed outbound message. Detail carries the
// provider's response body when one was received.
type SendError struct {
	Destination string
	StatusCode  int
	Detail      string
	Err         error
}

func (e *SendError) Error() string {
	switch {
	case e.Detail != "":
		return fmt.Sprintf("send to %s failed (status %d): %s", e.Destination, e.StatusCode, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("send to %s failed: %v", e.Destination, e.Err)
	default:
		return fmt.Sprintf("send to %s failed", e.Destination)
	}
}

func (e *SendError) Unwrap() error {
	return e.Err
}
