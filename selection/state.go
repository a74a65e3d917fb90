// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package selection

// State is the lifecycle position of a viewer's selection
type State int

const (
	StateOpen State = iota
	StateSelecting
	StateSubmitting
	StateVoted
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateSelecting:
		return "selecting"
	case StateSubmitting:
		return "submitting"
	case StateVoted:
		return "voted"
	case StateExpired:
		return "expired"
	}
	return "unknown"
}

func (s State) selectable() bool {
	return s == StateOpen || s == StateSelecting
}
