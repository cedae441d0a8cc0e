package booking

import (
	"strings"
	"time"
)

// State selects which bookings a list query returns. It is evaluated against
// the current time on every request and never stored.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

// Predicate is a store-agnostic filter. Nil bounds and an empty Status match everything.
type Predicate struct {
	State           State
	StartAtOrBefore *time.Time
	StartAfter      *time.Time
	EndAtOrAfter    *time.Time
	EndBefore       *time.Time
	Status          Status
}

var classifiers = map[State]func(now time.Time) Predicate{
	StateAll: func(time.Time) Predicate {
		return Predicate{State: StateAll}
	},
	StateCurrent: func(now time.Time) Predicate {
		return Predicate{State: StateCurrent, StartAtOrBefore: &now, EndAtOrAfter: &now}
	},
	StatePast: func(now time.Time) Predicate {
		return Predicate{State: StatePast, EndBefore: &now}
	},
	StateFuture: func(now time.Time) Predicate {
		return Predicate{State: StateFuture, StartAfter: &now}
	},
	StateWaiting: func(time.Time) Predicate {
		return Predicate{State: StateWaiting, Status: StatusWaiting}
	},
	StateRejected: func(time.Time) Predicate {
		return Predicate{State: StateRejected, Status: StatusRejected}
	},
}

// ParseState normalizes a keyword. Blank means ALL.
func ParseState(s string) (State, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return StateAll, nil
	}
	st := State(s)
	if _, ok := classifiers[st]; !ok {
		return "", ErrUnknownState
	}
	return st, nil
}

// Classify maps a state keyword and the current instant to a Predicate.
func Classify(state string, now time.Time) (Predicate, error) {
	st, err := ParseState(state)
	if err != nil {
		return Predicate{}, err
	}
	return classifiers[st](now), nil
}

// Matches reports whether b satisfies every bound of p.
func (p Predicate) Matches(b *Booking) bool {
	if p.StartAtOrBefore != nil && b.Start.After(*p.StartAtOrBefore) {
		return false
	}
	if p.StartAfter != nil && !b.Start.After(*p.StartAfter) {
		return false
	}
	if p.EndAtOrAfter != nil && b.End.Before(*p.EndAtOrAfter) {
		return false
	}
	if p.EndBefore != nil && !b.End.Before(*p.EndBefore) {
		return false
	}
	if p.Status != "" && b.Status != p.Status {
		return false
	}
	return true
}
