package model

import "time"

// TicketManager issues and verifies short-lived session unlock tickets.
type TicketManager interface {
	IssueUnlockTicket(address, fingerprint string) (string, error)
	ParseUnlockTicket(ticket string) (address, fingerprint string, err error)
}

// UnlockTicketTTL bounds how long a cached unlock stays valid.
const UnlockTicketTTL = 12 * time.Hour
