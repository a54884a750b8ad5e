// Package eitrule factors the EIT present/following decoding rule shared by
// the Program Filter and the Airtime Tracker (spec.md §9's "observer
// duality": both components inspect the same up-to-two events and differ
// only in what they do with the result).
package eitrule

import "github.com/nanbu-tv/tsgate/internal/psi"

// Kind is the outcome of evaluating an EIT's event list against a target
// event id.
type Kind int

const (
	// NoEvents means the EIT carried zero events: the event was canceled.
	// Callers must stop unconditionally, regardless of state.
	NoEvents Kind = iota
	// Match means one of the (up to two) events is the target; Event holds it.
	Match
	// Missing means the target is absent from both slots, or only one slot
	// was present and it didn't match. Callers already streaming/draining
	// should continue (the EIT may simply not carry the following event
	// yet); callers still waiting should stop.
	Missing
)

// Decision is the result of Evaluate.
type Decision struct {
	Kind  Kind
	Event psi.EITEvent
}

// Evaluate applies spec.md §4.3/§4.4's EIT event rule: event[0] matching eid
// is the present event; failing that, event[1] matching eid is the
// following event; anything else is Missing.
func Evaluate(events []psi.EITEvent, eid uint16) Decision {
	if len(events) == 0 {
		return Decision{Kind: NoEvents}
	}
	if events[0].EventID == eid {
		return Decision{Kind: Match, Event: events[0]}
	}
	if len(events) < 2 {
		return Decision{Kind: Missing}
	}
	if events[1].EventID == eid {
		return Decision{Kind: Match, Event: events[1]}
	}
	return Decision{Kind: Missing}
}
