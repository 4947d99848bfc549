// Package scrape runs "trigger scrape, then refresh results" as one
// user-visible operation.
//
// Valid state graph:
//
//	Idle ──► Scraping ──► Refreshing ──► Idle
//	            │              │
//	            └──► Failed ◄──┘
//	                   │
//	                   └──► Idle
//
// A run is only accepted from Idle (Failed is acknowledged into Idle by the
// next run).
package scrape

import "fmt"

type State string

const (
	StateIdle       State = "IDLE"
	StateScraping   State = "SCRAPING"
	StateRefreshing State = "REFRESHING"
	StateFailed     State = "FAILED"
)

var validTransitions = map[State][]State{
	StateIdle:       {StateScraping},
	StateScraping:   {StateRefreshing, StateFailed},
	StateRefreshing: {StateIdle, StateFailed},
	StateFailed:     {StateIdle},
}

// IsTransitionAllowed returns true when moving from → to is permitted.
func IsTransitionAllowed(from, to State) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsBusy reports whether a run is in progress in state s.
func IsBusy(s State) bool {
	return s == StateScraping || s == StateRefreshing
}

func ParseState(s string) (State, error) {
	st := State(s)
	switch st {
	case StateIdle, StateScraping, StateRefreshing, StateFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown scrape state %q", s)
}
