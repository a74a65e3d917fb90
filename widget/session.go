// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package widget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/danielhkuo/pollview/footer"
	"github.com/danielhkuo/pollview/models"
	"github.com/danielhkuo/pollview/projector"
	"github.com/danielhkuo/pollview/selection"
)

var ErrFetchFailed = errors.New("poll fetch failed")

// Fetcher loads the current state of a poll as seen by the viewer
type Fetcher interface {
	FetchPoll(ctx context.Context, pollID string) (models.Poll, error)
}

// FetcherFunc adapts a function to the Fetcher interface
type FetcherFunc func(ctx context.Context, pollID string) (models.Poll, error)

func (f FetcherFunc) FetchPoll(ctx context.Context, pollID string) (models.Poll, error) {
	return f(ctx, pollID)
}

// Config carries everything a session needs. Nothing is read from
// ambient state.
type Config struct {
	PollID    string
	Initial   *models.Poll // optional data to show before the first Load
	Fetcher   Fetcher
	Submitter selection.Submitter

	ViewerAccountID string // empty for anonymous viewers
	StatusAuthorID  string // defaults to the poll's AuthorAccountID

	Clock clockwork.Clock
}

// Session binds a poll, the viewer's selection, and the collaborators that
// fetch and submit it. One session per displayed poll.
type Session struct {
	cfg     Config
	tracker *selection.Tracker
	fetches singleflight.Group

	mu          sync.Mutex
	showResults bool
	closed      bool
	observers   map[int]func()
	next        int

	stopForward func()
}

func New(cfg Config) *Session {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	initial := models.Poll{ID: cfg.PollID}
	if cfg.Initial != nil {
		initial = cfg.Initial.Clone()
		if cfg.PollID == "" {
			cfg.PollID = initial.ID
		}
	}

	s := &Session{
		cfg:       cfg,
		tracker:   selection.NewTracker(initial, cfg.Submitter, cfg.Clock),
		observers: make(map[int]func()),
	}
	s.stopForward = s.tracker.Subscribe(func(selection.Snapshot) { s.notify() })
	return s
}

// Load fetches the poll and replaces local data. A failed fetch leaves the
// previous data in place. Concurrent loads share one request.
func (s *Session) Load(ctx context.Context) error {
	if s.cfg.Fetcher == nil {
		return fmt.Errorf("%w: no fetcher configured", ErrFetchFailed)
	}

	v, err, _ := s.fetches.Do(s.cfg.PollID, func() (any, error) {
		return s.cfg.Fetcher.FetchPoll(ctx, s.cfg.PollID)
	})
	if err != nil {
		slog.Warn("poll fetch failed", "poll_id", s.cfg.PollID, "error", err)
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	if s.isClosed() {
		return selection.ErrClosed
	}
	s.tracker.Load(v.(models.Poll))
	return nil
}

// Toggle selects or deselects the option at index. Ignored once the poll
// is expired or voted.
func (s *Session) Toggle(index int) bool {
	return s.tracker.Toggle(index)
}

// Submit sends the selection and, on success, refreshes the poll so the
// viewer sees updated tallies. A failed refresh is logged, not returned:
// the vote itself went through.
func (s *Session) Submit(ctx context.Context) error {
	if err := s.tracker.Submit(ctx); err != nil {
		return err
	}

	if s.cfg.Fetcher != nil {
		if err := s.Load(ctx); err != nil && !errors.Is(err, selection.ErrClosed) {
			slog.Warn("refresh after vote failed", "poll_id", s.cfg.PollID, "error", err)
		}
	}
	return nil
}

// ShowResults records an explicit request to display tallies
func (s *Session) ShowResults() {
	s.mu.Lock()
	s.showResults = true
	s.mu.Unlock()
	s.notify()
}

func (s *Session) ResultsVisible() bool {
	s.mu.Lock()
	requested := s.showResults
	s.mu.Unlock()

	return projector.ShouldShowResults(requested, s.authorID(s.tracker.Poll()), s.cfg.ViewerAccountID)
}

// Render computes the full view state for a container of the given width
func (s *Session) Render(containerWidth float64) models.PollView {
	s.tracker.ObserveExpiry()
	snap := s.tracker.Snapshot()
	poll := snap.Poll

	s.mu.Lock()
	requested := s.showResults
	s.mu.Unlock()
	show := projector.ShouldShowResults(requested, s.authorID(poll), s.cfg.ViewerAccountID)

	view := models.PollView{
		PollID:      poll.ID,
		Options:     make([]models.OptionView, len(poll.Options)),
		ShowResults: show,
		Disabled:    poll.Expired || poll.HasVoted() || snap.State == selection.StateSubmitting,
		CanSubmit:   snap.CanSubmit,
		Footer:      footer.Build(poll, s.cfg.Clock.Now()).View(),
	}

	for i, opt := range poll.Options {
		selected := slices.Contains(snap.Selected, i) ||
			(poll.HasVoted() && slices.Contains(poll.OwnVotes, i))

		ov := models.OptionView{
			Index:    i,
			ID:       opt.ID,
			Title:    opt.Title,
			Selected: selected,
			Icon:     icon(poll.Multiple, selected),
		}
		if show {
			pct := projector.Percent(poll, opt)
			ov.Percent = &pct
			ov.BarWidth = projector.BarWidth(poll, opt, containerWidth)
		}
		view.Options[i] = ov
	}

	return view
}

// Watch ticks once a second while the poll has a pending expiry so
// countdowns refresh, and moves the selection to expired when the time
// passes. It returns when ctx is done, the poll expires, or the session
// closes.
func (s *Session) Watch(ctx context.Context) {
	poll := s.tracker.Poll()
	if poll.Expired || poll.ExpiresAt == nil {
		return
	}

	ticker := s.cfg.Clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if s.isClosed() {
				return
			}
			if s.tracker.ObserveExpiry() {
				slog.Debug("poll expired", "poll_id", s.cfg.PollID)
				return
			}
			s.notify()
		}
	}
}

// Subscribe registers fn to be called whenever the rendered state may have
// changed. The returned function removes the subscription.
func (s *Session) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	s.observers[id] = fn

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Close tears the session down. Fetches or submissions still in flight
// are discarded when they complete.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.observers = make(map[int]func())
	s.mu.Unlock()

	s.stopForward()
	s.tracker.Close()
}

func (s *Session) Tracker() *selection.Tracker {
	return s.tracker
}

func (s *Session) authorID(poll models.Poll) string {
	if s.cfg.StatusAuthorID != "" {
		return s.cfg.StatusAuthorID
	}
	return poll.AuthorAccountID
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) notify() {
	s.mu.Lock()
	observers := make([]func(), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn()
	}
}

func icon(multiple, selected bool) string {
	switch {
	case multiple && selected:
		return models.IconCheckboxChecked
	case multiple:
		return models.IconCheckbox
	case selected:
		return models.IconRadioChecked
	}
	return models.IconRadio
}
