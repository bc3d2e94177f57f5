package enum

// QueueStatus is the delivery state of a queued fiscal transaction. It is
// persisted as a plain string column so external systems can query pending
// counts without knowing anything else about the adapter.
type QueueStatus string

const (
	QueuePending         QueueStatus = "pending"
	QueueSending         QueueStatus = "sending"
	QueueSent            QueueStatus = "sent"
	QueueFailed          QueueStatus = "failed"
	QueueFailedPermanent QueueStatus = "failed_permanent"
)

// AllQueueStatuses lists every persisted status, used for stats queries.
var AllQueueStatuses = []QueueStatus{
	QueuePending,
	QueueSending,
	QueueSent,
	QueueFailed,
	QueueFailedPermanent,
}

func (s QueueStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further automatic transition may occur.
// failed_permanent can only be left through an operator requeue.
func (s QueueStatus) IsTerminal() bool {
	return s == QueueSent || s == QueueFailedPermanent
}

// CanTransitionTo reports whether moving from s to next is a legal state
// machine step. The operator requeue (failed_permanent -> pending) is the
// single exit from a terminal state.
func (s QueueStatus) CanTransitionTo(next QueueStatus) bool {
	switch s {
	case QueuePending:
		return next == QueueSending
	case QueueSending:
		return next == QueueSent || next == QueueFailed || next == QueueFailedPermanent
	case QueueFailed:
		return next == QueueSending || next == QueueFailedPermanent
	case QueueFailedPermanent:
		return next == QueuePending
	default:
		return false
	}
}

// ParseQueueStatus maps a raw string onto a known status.
func ParseQueueStatus(s string) (QueueStatus, bool) {
	for _, known := range AllQueueStatuses {
		if string(known) == s {
			return known, true
		}
	}
	return "", false
}
