package entities

import (
	"fmt"
	"strings"
)

const (
	// TicketPrefix is the channel name prefix of an open ticket.
	TicketPrefix = "talep-"

	// ClosedPrefix is the channel name prefix of an archived ticket.
	ClosedPrefix = "kapali-"
)

// TicketChannelName builds the deterministic channel name for a ticket.
// Ticket 1 opened by "wolf" becomes "talep-1-wolf".
func TicketChannelName(id int, username string) string {
	return fmt.Sprintf("%s%d-%s", TicketPrefix, id, username)
}

// ClosedChannelName rewrites an open ticket channel name with the closed
// prefix. "talep-1-wolf" becomes "kapali-1-wolf".
func ClosedChannelName(name string) string {
	return ClosedPrefix + strings.TrimPrefix(name, TicketPrefix)
}

// IsTicketChannelName reports whether the channel name carries the open
// ticket prefix. This is a cheap identity check, not a security boundary.
func IsTicketChannelName(name string) bool {
	return strings.HasPrefix(name, TicketPrefix)
}

// TicketForm is the information collected from the requester when a ticket is
// opened. The platform layer validates the fields before they reach the core.
type TicketForm struct {
	FirstName string
	LastName  string
	Email     string
	Reason    string
}
