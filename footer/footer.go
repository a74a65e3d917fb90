// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package footer

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/pollview/models"
)

const Separator = " ⸱ "

// Closing is the trailing part of the footer
type Closing int

const (
	ClosingNone Closing = iota
	ClosingClosed
	ClosingCountdown
)

type Summary struct {
	VotesLabel string
	Separator  string
	Closing    Closing
	Remaining  time.Duration // only set for ClosingCountdown
	Timer      string        // h:mm:ss, only set for ClosingCountdown
	Phrase     string        // "Closed", "Closes 3 hours from now", or empty
}

// Build assembles the footer for poll as seen at now
func Build(poll models.Poll, now time.Time) Summary {
	s := Summary{
		VotesLabel: VotesLabel(poll),
		Separator:  Separator,
	}

	switch {
	case poll.Expired:
		s.Closing = ClosingClosed
		s.Phrase = "Closed"
	case poll.ExpiresAt != nil:
		remaining := poll.ExpiresAt.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		s.Closing = ClosingCountdown
		s.Remaining = remaining
		s.Timer = FormatTimer(remaining)
		s.Phrase = "Closes " + humanize.RelTime(*poll.ExpiresAt, now, "ago", "from now")
	}

	return s
}

// VotesLabel pluralizes the tally. Multiple choice polls report voters
// separately because one voter may cast several votes.
func VotesLabel(poll models.Poll) string {
	votes := plural(poll.VotesCount, "vote", "votes")
	if !poll.Multiple {
		return votes
	}
	return votes + " from " + plural(poll.SafeVotersCount(), "voter", "voters")
}

// FormatTimer renders d like a running clock: 4:05 or 1:04:05
func FormatTimer(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	sec := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// Text joins the footer parts the way they're displayed
func (s Summary) Text() string {
	if s.Closing == ClosingNone {
		return s.VotesLabel
	}
	return s.VotesLabel + s.Separator + s.Phrase
}

func (s Summary) View() models.FooterView {
	return models.FooterView{
		VotesLabel: s.VotesLabel,
		Separator:  s.Separator,
		Closing:    s.Phrase,
		Timer:      s.Timer,
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return humanize.Comma(int64(n)) + " " + many
}
