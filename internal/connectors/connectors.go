package connectors

import (
	"time"

	"freshops/internal"
)

// FetchRequest narrows a mailbox pull to the intake window: one label or
// folder, only mail received after the cursor, and a bounded batch so a
// backlogged inbox cannot stall a poll cycle.
type FetchRequest struct {
	Label string
	Since time.Time
	Max   int
}

// MailConnector pulls order and price-list mail for intake. Implementations
// apply the window server-side where the protocol allows it; the fetch
// service still deduplicates whatever comes back.
type MailConnector interface {
	Fetch(req FetchRequest) ([]internal.FetchedMailMessage, error)
}
