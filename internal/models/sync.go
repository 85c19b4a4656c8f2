package models

// SyncOutcome is the terminal result of one configuration sync exchange.
type SyncOutcome int

const (
	SyncTimedOut SyncOutcome = iota
	SyncAcknowledged
	SyncReplaced
	SyncRejected
)

func (o SyncOutcome) String() string {
	switch o {
	case SyncAcknowledged:
		return "acknowledged"
	case SyncReplaced:
		return "replaced"
	case SyncRejected:
		return "rejected"
	case SyncTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}
