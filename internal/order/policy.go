package order

import "time"

// Action is the operation requesting a status change.
type Action int

const (
	ActionSetStatus Action = iota
	ActionConfirm
	ActionCancel
)

func (a Action) String() string {
	switch a {
	case ActionConfirm:
		return "confirm"
	case ActionCancel:
		return "cancel"
	default:
		return "set_status"
	}
}

// CheckTransition is the single place that decides whether an order may move
// from one status to another. Only confirmation has a precondition; the
// generic update and cancellation accept any current status.
func CheckTransition(from, to OrderStatus, action Action) error {
	if !to.IsValid() {
		return ErrInvalidStatus
	}

	switch action {
	case ActionConfirm:
		if from != StatusPendingConfirmation {
			return ErrAlreadyProcessed
		}
	case ActionCancel, ActionSetStatus:
	}
	return nil
}

// applyStatus mutates o to the new status including the completion side
// effects on payment and delivery timestamps.
func applyStatus(o *Order, to OrderStatus, now time.Time) {
	o.OrderStatus = to
	o.UpdatedAt = now

	if to == StatusCompleted {
		paid := now
		delivered := now
		o.PaymentStatus = PaymentPaid
		o.PaidAt = &paid
		o.DeliveredAt = &delivered
	}
}

// shouldNotify reports whether the owner gets a status email for the change.
func shouldNotify(action Action, to OrderStatus) bool {
	if action != ActionSetStatus {
		return true
	}
	switch to {
	case StatusProcessing, StatusShipped, StatusCompleted:
		return true
	}
	return false
}
