package order

// Status is the order lifecycle state. PENDING transitions exactly once to a
// terminal state and never back.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	// StatusIncomplete means the payment outcome is unknown (gateway
	// unreachable); reservations stay held for reconciliation.
	StatusIncomplete Status = "INCOMPLETE"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusIncomplete:
		return true
	default:
		return false
	}
}

func (s Status) IsValid() bool {
	return s == StatusPending || s.IsTerminal()
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentSuccess, PaymentFailed:
		return true
	default:
		return false
	}
}
