// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Selection icon names, matching the platform symbol set used by clients
const (
	IconCheckbox        = "square"
	IconCheckboxChecked = "checkmark.square"
	IconRadio           = "circle"
	IconRadioChecked    = "record.circle"
)

// Domain types

type Option struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	VotesCount int    `json:"votes_count"`
}

type Poll struct {
	ID              string     `json:"id"`
	AuthorAccountID string     `json:"author_account_id,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at"`
	Expired         bool       `json:"expired"`
	Multiple        bool       `json:"multiple"`
	VotesCount      int        `json:"votes_count"`
	VotersCount     *int       `json:"voters_count"`
	Voted           *bool      `json:"voted,omitempty"`
	OwnVotes        []int      `json:"own_votes,omitempty"`
	Options         []Option   `json:"options"`
}

// SafeVotersCount returns the number of distinct voters, treating an
// absent or negative count as zero.
func (p Poll) SafeVotersCount() int {
	if p.VotersCount == nil || *p.VotersCount < 0 {
		return 0
	}
	return *p.VotersCount
}

// HasVoted reports whether the viewer already voted on this poll.
func (p Poll) HasVoted() bool {
	return p.Voted != nil && *p.Voted
}

// Clone returns a deep copy so callers can't mutate shared state.
func (p Poll) Clone() Poll {
	c := p
	if p.ExpiresAt != nil {
		t := *p.ExpiresAt
		c.ExpiresAt = &t
	}
	if p.VotersCount != nil {
		n := *p.VotersCount
		c.VotersCount = &n
	}
	if p.Voted != nil {
		v := *p.Voted
		c.Voted = &v
	}
	if p.OwnVotes != nil {
		c.OwnVotes = append([]int(nil), p.OwnVotes...)
	}
	c.Options = append([]Option(nil), p.Options...)
	return c
}

type Account struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Request types

type RegisterAccountRequest struct {
	DisplayName string `json:"display_name"`
}

type CreatePollRequest struct {
	Options   []string `json:"options"`
	ExpiresIn int      `json:"expires_in"` // seconds, 0 means never
	Multiple  bool     `json:"multiple"`
}

type VoteRequest struct {
	Choices []int `json:"choices"`
}

// Response types

type RegisterAccountResponse struct {
	AccountID   string `json:"account_id"`
	AccessToken string `json:"access_token"`
}

// View types rendered for a host view layer

type OptionView struct {
	Index    int     `json:"index"`
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Selected bool    `json:"selected"`
	Icon     string  `json:"icon"`
	Percent  *int    `json:"percent,omitempty"`
	BarWidth float64 `json:"bar_width"`
}

type FooterView struct {
	VotesLabel string `json:"votes_label"`
	Separator  string `json:"separator"`
	Closing    string `json:"closing,omitempty"`
	Timer      string `json:"timer,omitempty"`
}

type PollView struct {
	PollID      string       `json:"poll_id"`
	Options     []OptionView `json:"options"`
	ShowResults bool         `json:"show_results"`
	Disabled    bool         `json:"disabled"`
	CanSubmit   bool         `json:"can_submit"`
	Footer      FooterView   `json:"footer"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
