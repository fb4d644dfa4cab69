package rawfeed

import "time"

// Payload is one archived provider response, kept verbatim for audit and
// reprocessing.
type Payload struct {
	Source      string
	Endpoint    string
	GameID      string
	TeamID      string
	PayloadJSON string
	FetchedAt   time.Time
}
