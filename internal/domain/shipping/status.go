package shipping

import "strings"

// ---------------------------------------------------------------------------
// ShipmentStatus
// ---------------------------------------------------------------------------

// ShipmentStatus is the canonical delivery status of a shipment.
type ShipmentStatus string

const (
	// StatusLabelCreated is the initial status, set implicitly at label issuance
	StatusLabelCreated ShipmentStatus = "label_created"
	// StatusInTransit indicates the shipment is moving through the carrier network
	StatusInTransit ShipmentStatus = "in_transit"
	// StatusOutForDelivery indicates the shipment is on a delivery vehicle
	StatusOutForDelivery ShipmentStatus = "out_for_delivery"
	// StatusDelivered is a terminal status
	StatusDelivered ShipmentStatus = "delivered"
	// StatusException is a terminal status reachable from any non-terminal state
	StatusException ShipmentStatus = "exception"
	// StatusReturned is a terminal status reachable from any non-terminal state
	StatusReturned ShipmentStatus = "returned"
)

// IsValid returns true if the status is one of the canonical values
func (s ShipmentStatus) IsValid() bool {
	switch s {
	case StatusLabelCreated, StatusInTransit, StatusOutForDelivery,
		StatusDelivered, StatusException, StatusReturned:
		return true
	default:
		return false
	}
}

// String returns the string representation of ShipmentStatus
func (s ShipmentStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further status transitions are defined
func (s ShipmentStatus) IsTerminal() bool {
	switch s {
	case StatusDelivered, StatusException, StatusReturned:
		return true
	default:
		return false
	}
}

// rank orders the progress states. Terminal exception/returned states are not
// ranked; they are reachable from any non-terminal state.
func (s ShipmentStatus) rank() int {
	switch s {
	case StatusLabelCreated:
		return 0
	case StatusInTransit:
		return 1
	case StatusOutForDelivery:
		return 2
	case StatusDelivered:
		return 3
	default:
		return -1
	}
}

// CanTransitionTo reports whether the state machine permits moving from s to
// next. Progress states only advance forward; exception and returned are
// reachable from any non-terminal state; terminal states permit nothing.
// A tracking poll that reports an event after a terminal state is recorded as
// an event but must not revert the status.
func (s ShipmentStatus) CanTransitionTo(next ShipmentStatus) bool {
	if s.IsTerminal() || !next.IsValid() {
		return false
	}
	if next == StatusException || next == StatusReturned {
		return true
	}
	return next.rank() > s.rank()
}

// ---------------------------------------------------------------------------
// Tracking Status Mapper
// ---------------------------------------------------------------------------

// statusKeywords is checked in priority order: a carrier status string that
// mentions several keywords must resolve to the most specific/terminal one,
// and an unrecognized string degrades to in_transit rather than surfacing an
// unknown value to callers.
var statusKeywords = []struct {
	status   ShipmentStatus
	keywords []string
}{
	{StatusDelivered, []string{"delivered"}},
	{StatusOutForDelivery, []string{"out for delivery"}},
	{StatusInTransit, []string{"in transit", "in-transit", "picked up"}},
	{StatusException, []string{"exception", "undeliverable"}},
	{StatusReturned, []string{"returned", "return to sender"}},
}

// MapTrackingStatus maps a free-text or enum carrier status to the canonical
// status set. The mapping is a pure function: identical input always yields
// the identical canonical status.
func MapTrackingStatus(carrierStatus string) ShipmentStatus {
	normalized := strings.ToLower(carrierStatus)
	for _, entry := range statusKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(normalized, keyword) {
				return entry.status
			}
		}
	}
	return StatusInTransit
}
