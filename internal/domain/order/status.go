package order

import "fmt"

// Status is the lifecycle state of an order.
type Status string

const (
	StatusNew           Status = "New"
	StatusOrderReceived Status = "Order Received"
	StatusPreparing     Status = "Preparing"
	StatusOnTheWay      Status = "On the Way"
	StatusPickupReady   Status = "Pick-up Ready"
	StatusDelivered     Status = "Delivered"
	StatusPickedUp      Status = "Picked Up"
	StatusCancelled     Status = "Cancelled"
)

// transitions maps each status to the statuses reachable from it.
// Cancelled is additionally reachable from any non-terminal status.
var transitions = map[Status][]Status{
	StatusNew:           {StatusOrderReceived},
	StatusOrderReceived: {StatusPreparing},
	StatusPreparing:     {StatusOnTheWay, StatusPickupReady},
	StatusOnTheWay:      {StatusDelivered},
	StatusPickupReady:   {StatusPickedUp},
}

// InvalidTransitionError indicates an attempted status change that is not
// allowed by the order lifecycle.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %q to %q", e.From, e.To)
}

// ParseStatus validates a raw status string.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusNew, StatusOrderReceived, StatusPreparing, StatusOnTheWay,
		StatusPickupReady, StatusDelivered, StatusPickedUp, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusPickedUp || s == StatusCancelled
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	if next == StatusCancelled {
		return !s.Terminal()
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
