package booking

import "fmt"

// Kind discriminates the two bookable product types. Tour bookings and
// experience bookings share one lifecycle; the only difference is the
// name of the approved state.
type Kind string

const (
	KindTour       Kind = "tour"
	KindExperience Kind = "experience"
)

// Status represents the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"  // tour bookings
	StatusConfirmed Status = "confirmed" // experience bookings
	StatusCancelled Status = "cancelled"
)

// PaymentStatus represents the payment state of a booking.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentFailed    PaymentStatus = "failed"
)

// validTransitions is the shared state machine for both booking kinds.
// Cancelled is terminal: nothing leaves it, which also guards against
// double refunds.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusConfirmed, StatusCancelled},
	StatusApproved:  {StatusPending, StatusCancelled},
	StatusConfirmed: {StatusPending, StatusCancelled},
	StatusCancelled: {},
}

// Approved returns the kind-specific name of the approved state.
func Approved(kind Kind) Status {
	if kind == KindExperience {
		return StatusConfirmed
	}
	return StatusApproved
}

// Statuses returns the statuses a booking of the given kind may hold.
func Statuses(kind Kind) []Status {
	return []Status{StatusPending, Approved(kind), StatusCancelled}
}

// IsValid reports whether s is a recognized status for the given kind.
func (s Status) IsValid(kind Kind) bool {
	for _, v := range Statuses(kind) {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	allowed, ok := validTransitions[s]
	if !ok {
		return true
	}
	return len(allowed) == 0
}

// CanTransitionTo reports whether a transition from s to target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Transition validates a status change for a booking of the given kind.
// It returns an error both for unknown target statuses and for moves the
// state machine forbids.
func Transition(kind Kind, from, to Status) error {
	if !to.IsValid(kind) {
		return fmt.Errorf("invalid %s booking status %q", kind, to)
	}
	if from == to {
		return fmt.Errorf("booking is already %s", from)
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("cannot change booking status from %s to %s", from, to)
	}
	return nil
}

// RefundsOnEntry reports whether entering the target status triggers the
// refund cascade for a booking whose payment was completed.
func RefundsOnEntry(to Status, payment PaymentStatus) bool {
	return to == StatusCancelled && payment == PaymentCompleted
}

// IsValidPaymentStatus reports whether p is a recognized payment status.
func IsValidPaymentStatus(p PaymentStatus) bool {
	switch p {
	case PaymentPending, PaymentCompleted, PaymentRefunded, PaymentFailed:
		return true
	}
	return false
}
