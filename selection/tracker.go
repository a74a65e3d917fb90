// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/pollview/models"
)

var (
	ErrInvalidSelection   = errors.New("selection cannot be submitted")
	ErrSubmissionFailed   = errors.New("vote submission failed")
	ErrSubmissionInFlight = errors.New("vote submission already in flight")
	ErrClosed             = errors.New("selection tracker closed")
)

// Submitter sends a viewer's chosen option indices for a poll
type Submitter interface {
	SubmitVotes(ctx context.Context, pollID string, choices []int) error
}

// SubmitterFunc adapts a function to the Submitter interface
type SubmitterFunc func(ctx context.Context, pollID string, choices []int) error

func (f SubmitterFunc) SubmitVotes(ctx context.Context, pollID string, choices []int) error {
	return f(ctx, pollID, choices)
}

// Snapshot is an immutable copy of the tracker state handed to observers
type Snapshot struct {
	State     State
	Selected  []int
	CanSubmit bool
	Poll      models.Poll
}

// Tracker holds the viewer's in-progress selection for one poll.
// All mutations are serialized by mu; observers run after the lock is
// released but before the mutating call returns.
type Tracker struct {
	submitter Submitter
	clock     clockwork.Clock

	mu           sync.Mutex
	poll         models.Poll
	index        map[string]int
	selected     []int
	state        State
	generation   uint64
	closed       bool
	observers    map[int]func(Snapshot)
	nextObserver int
}

func NewTracker(poll models.Poll, submitter Submitter, clock clockwork.Clock) *Tracker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	t := &Tracker{
		submitter: submitter,
		clock:     clock,
		observers: make(map[int]func(Snapshot)),
	}
	t.replacePollLocked(poll)
	t.observeVotedLocked()
	t.observeExpiryLocked()
	return t
}

// Load replaces the poll data wholesale, e.g. after a refetch.
// Selected indices that no longer exist are dropped. Loading a different
// poll resets the selection and state.
func (t *Tracker) Load(poll models.Poll) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}

	if poll.ID != t.poll.ID {
		t.generation++
		t.selected = nil
		t.state = StateOpen
	}

	keepVoted := t.state == StateVoted
	ownVotes := t.poll.OwnVotes
	wasExpired := t.state == StateExpired

	t.replacePollLocked(poll)

	// Local state never regresses: a stale refetch can't reopen a poll
	// we've seen expire or un-vote a ballot we've seen accepted.
	if keepVoted && !t.poll.HasVoted() {
		voted := true
		t.poll.Voted = &voted
		t.poll.OwnVotes = ownVotes
	}
	if wasExpired {
		t.poll.Expired = true
	}

	t.selected = slices.DeleteFunc(t.selected, func(i int) bool {
		return i >= len(t.poll.Options)
	})
	if t.state.selectable() {
		t.state = t.selectingState()
	}
	t.observeVotedLocked()
	t.observeExpiryLocked()

	t.notifyAndUnlock()
}

// Toggle flips the selection of the option at index.
// Returns false without changing anything when the poll is expired,
// already voted, a submission is in flight, or index is out of range.
func (t *Tracker) Toggle(index int) bool {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return false
	}

	expired := t.observeExpiryLocked()
	if !t.state.selectable() || index < 0 || index >= len(t.poll.Options) {
		if expired {
			t.notifyAndUnlock()
		} else {
			t.mu.Unlock()
		}
		return false
	}

	pos := slices.Index(t.selected, index)
	switch {
	case !t.poll.Multiple && pos >= 0:
		t.selected = nil
	case !t.poll.Multiple:
		t.selected = []int{index}
	case pos >= 0:
		t.selected = slices.Delete(t.selected, pos, pos+1)
	default:
		t.selected = append(t.selected, index)
	}
	t.state = t.selectingState()

	t.notifyAndUnlock()
	return true
}

// ToggleOption toggles by option ID using the index built on load
func (t *Tracker) ToggleOption(optionID string) bool {
	t.mu.Lock()
	index, ok := t.index[optionID]
	t.mu.Unlock()
	if !ok {
		return false
	}
	return t.Toggle(index)
}

// ObserveExpiry checks the poll's expiry against the clock and moves the
// tracker to StateExpired once it has passed. Returns true when expired.
func (t *Tracker) ObserveExpiry() bool {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return false
	}
	if t.observeExpiryLocked() {
		t.notifyAndUnlock()
		return true
	}
	expired := t.state == StateExpired
	t.mu.Unlock()
	return expired
}

// Submit sends the selected indices, in the order they were chosen.
// Only one submission may be in flight. On failure the selection is kept
// so the caller can retry.
func (t *Tracker) Submit(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}

	expired := t.observeExpiryLocked()
	if t.state == StateSubmitting {
		t.mu.Unlock()
		return ErrSubmissionInFlight
	}
	if !t.canSubmitLocked() {
		if expired {
			t.notifyAndUnlock()
		} else {
			t.mu.Unlock()
		}
		return ErrInvalidSelection
	}
	if t.submitter == nil {
		t.mu.Unlock()
		return fmt.Errorf("%w: no submitter configured", ErrSubmissionFailed)
	}

	pollID := t.poll.ID
	choices := slices.Clone(t.selected)
	generation := t.generation
	t.state = StateSubmitting
	t.notifyAndUnlock()

	err := t.submitter.SubmitVotes(ctx, pollID, choices)

	t.mu.Lock()
	if t.closed || generation != t.generation {
		// Torn down or moved to another poll while waiting
		t.mu.Unlock()
		slog.Debug("discarding late vote submission result", "poll_id", pollID)
		return ErrClosed
	}

	if err != nil {
		if t.state == StateSubmitting {
			t.state = StateSelecting
		}
		t.notifyAndUnlock()
		slog.Warn("vote submission failed", "poll_id", pollID, "error", err)
		return fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	voted := true
	t.poll.Voted = &voted
	t.poll.OwnVotes = choices
	t.selected = nil
	if t.state != StateExpired {
		t.state = StateVoted
	}
	t.notifyAndUnlock()

	slog.Info("votes submitted", "poll_id", pollID, "choices", len(choices))
	return nil
}

// Subscribe registers fn to be called after every mutation.
// The returned function removes the subscription.
func (t *Tracker) Subscribe(fn func(Snapshot)) (cancel func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextObserver
	t.nextObserver++
	t.observers[id] = fn

	return func() {
		t.mu.Lock()
		delete(t.observers, id)
		t.mu.Unlock()
	}
}

// Close tears the tracker down. Results of a submission still in flight
// are discarded when they arrive.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.closed = true
	t.observers = make(map[int]func(Snapshot))
	t.mu.Unlock()
}

func (t *Tracker) IsSelected(index int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Contains(t.selected, index)
}

// CanSubmit reports whether there's a non-empty selection on a poll that
// is neither expired nor already voted, with no submission in flight.
func (t *Tracker) CanSubmit() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.canSubmitLocked()
}

func (t *Tracker) Selected() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.selected)
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Tracker) Poll() models.Poll {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.poll.Clone()
}

// IndexOf returns the position of an option in the loaded poll
func (t *Tracker) IndexOf(optionID string) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.index[optionID]
	return i, ok
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) canSubmitLocked() bool {
	return len(t.selected) > 0 &&
		!t.expiredLocked() &&
		!t.poll.HasVoted() &&
		t.state != StateSubmitting
}

func (t *Tracker) expiredLocked() bool {
	if t.state == StateExpired || t.poll.Expired {
		return true
	}
	return t.poll.ExpiresAt != nil && !t.clock.Now().Before(*t.poll.ExpiresAt)
}

// observeExpiryLocked moves to the terminal expired state. Returns true
// only on the transition.
func (t *Tracker) observeExpiryLocked() bool {
	if t.state == StateExpired || !t.expiredLocked() {
		return false
	}
	t.state = StateExpired
	t.poll.Expired = true
	t.selected = nil
	return true
}

func (t *Tracker) observeVotedLocked() {
	if t.poll.HasVoted() && t.state.selectable() {
		t.state = StateVoted
		t.selected = nil
	}
}

func (t *Tracker) selectingState() State {
	if len(t.selected) == 0 {
		return StateOpen
	}
	return StateSelecting
}

func (t *Tracker) replacePollLocked(poll models.Poll) {
	t.poll = poll.Clone()
	t.index = make(map[string]int, len(t.poll.Options))
	for i, opt := range t.poll.Options {
		t.index[opt.ID] = i
	}
}

func (t *Tracker) snapshotLocked() Snapshot {
	return Snapshot{
		State:     t.state,
		Selected:  slices.Clone(t.selected),
		CanSubmit: t.canSubmitLocked(),
		Poll:      t.poll.Clone(),
	}
}

// notifyAndUnlock releases mu and then calls every observer with the
// state as it was at release time.
func (t *Tracker) notifyAndUnlock() {
	snap := t.snapshotLocked()
	observers := make([]func(Snapshot), 0, len(t.observers))
	for _, fn := range t.observers {
		observers = append(observers, fn)
	}
	t.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}
