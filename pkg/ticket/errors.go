package ticket

import (
	"errors"
	"fmt"
)

var (
	// ErrArchiveNotConfigured is returned when a ticket is closed before an
	// archive category has been configured. The ticket keeps its state.
	ErrArchiveNotConfigured = errors.New("archive category is not configured")

	// ErrUnauthorized is returned when the actor lacks the administrator
	// permission, the staff role and every support team role.
	ErrUnauthorized = errors.New("actor is not permitted to manage tickets")

	// ErrNotTicket is returned when the channel does not carry the ticket
	// name prefix.
	ErrNotTicket = errors.New("channel is not a ticket")

	// ErrTicketClosing is returned when an operation targets a ticket whose
	// close grace period is already running.
	ErrTicketClosing = errors.New("ticket is already closing")
)

// ValidationError reports malformed user input, such as a non-numeric archive
// category ID during setup.
type ValidationError struct {
	// Input is the rejected input.
	Input string

	// Reason describes why the input was rejected.
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input %q: %s", e.Input, e.Reason)
}
