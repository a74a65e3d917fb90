// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/pollview/auth"
	"github.com/danielhkuo/pollview/middleware"
	"github.com/danielhkuo/pollview/models"
)

var (
	errPollNotFound   = errors.New("poll not found")
	errInvalidChoices = errors.New("invalid choices")
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// loadPoll reads a poll with its tallies. voted and own_votes are filled in
// only for a known viewer; anonymous viewers get neither.
func loadPoll(ctx context.Context, q querier, pollID, viewerID string, now time.Time) (models.Poll, error) {
	var (
		poll      models.Poll
		expiresAt sql.NullTime
		closedAt  sql.NullTime
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, author_account_id, multiple, expires_at, closed_at
		FROM poll WHERE id = $1
	`, pollID).Scan(&poll.ID, &poll.AuthorAccountID, &poll.Multiple, &expiresAt, &closedAt)
	if err == sql.ErrNoRows {
		return models.Poll{}, errPollNotFound
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query poll: %w", err)
	}

	// An early close ends the poll at the time it was closed
	switch {
	case closedAt.Valid:
		t := closedAt.Time
		poll.ExpiresAt = &t
		poll.Expired = true
	case expiresAt.Valid:
		t := expiresAt.Time
		poll.ExpiresAt = &t
		poll.Expired = !now.Before(t)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT o.id, o.title, COUNT(v.id)
		FROM poll_option o
		LEFT JOIN vote v ON v.poll_id = o.poll_id AND v.option_position = o.position
		WHERE o.poll_id = $1
		GROUP BY o.id, o.title, o.position
		ORDER BY o.position
	`, pollID)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	poll.Options = []models.Option{}
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.Title, &opt.VotesCount); err != nil {
			return models.Poll{}, fmt.Errorf("failed to scan option: %w", err)
		}
		poll.VotesCount += opt.VotesCount
		poll.Options = append(poll.Options, opt)
	}
	if err := rows.Err(); err != nil {
		return models.Poll{}, fmt.Errorf("failed to read options: %w", err)
	}

	var voters int
	err = q.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT account_id) FROM vote WHERE poll_id = $1
	`, pollID).Scan(&voters)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to count voters: %w", err)
	}
	poll.VotersCount = &voters

	if viewerID == "" {
		return poll, nil
	}

	own, err := ownVotes(ctx, q, pollID, viewerID)
	if err != nil {
		return models.Poll{}, err
	}
	voted := len(own) > 0
	poll.Voted = &voted
	poll.OwnVotes = own

	return poll, nil
}

// ownVotes returns the option indices an account chose, in submission order
func ownVotes(ctx context.Context, q querier, pollID, accountID string) ([]int, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT option_position FROM vote
		WHERE poll_id = $1 AND account_id = $2
		ORDER BY choice_order
	`, pollID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query own votes: %w", err)
	}
	defer rows.Close()

	own := []int{}
	for rows.Next() {
		var pos int
		if err := rows.Scan(&pos); err != nil {
			return nil, fmt.Errorf("failed to scan own vote: %w", err)
		}
		own = append(own, pos)
	}
	return own, rows.Err()
}

// validateChoices checks a ballot against the poll's options.
// Single-choice polls take exactly one choice.
func validateChoices(choices []int, optionCount int, multiple bool) error {
	if len(choices) == 0 {
		return fmt.Errorf("%w: choices cannot be empty", errInvalidChoices)
	}
	if !multiple && len(choices) > 1 {
		return fmt.Errorf("%w: poll accepts a single choice", errInvalidChoices)
	}

	seen := make(map[int]bool, len(choices))
	for _, c := range choices {
		if c < 0 || c >= optionCount {
			return fmt.Errorf("%w: choice %d out of range", errInvalidChoices, c)
		}
		if seen[c] {
			return fmt.Errorf("%w: duplicate choice %d", errInvalidChoices, c)
		}
		seen[c] = true
	}
	return nil
}

// accountExists reports whether a token's account is still registered
func accountExists(ctx context.Context, q querier, accountID string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM account WHERE id = $1)
	`, accountID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query account: %w", err)
	}
	return exists, nil
}

// isUniqueViolation reports whether err is a unique key conflict on
// either supported driver
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
			code == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

// dbPolls fetches polls straight from the database for a widget session
type dbPolls struct {
	db       *sql.DB
	viewerID string
	clock    clockwork.Clock
}

func (p dbPolls) FetchPoll(ctx context.Context, pollID string) (models.Poll, error) {
	return loadPoll(ctx, p.db, pollID, p.viewerID, p.clock.Now())
}

// optionalViewer returns the caller's account ID, or "" when no token was
// sent. A bad token gets a 401 and ok=false.
func optionalViewer(w http.ResponseWriter, r *http.Request, salt string) (accountID string, ok bool) {
	accountID, err := auth.AccountFromRequest(r, salt)
	if errors.Is(err, auth.ErrMissingToken) {
		return "", true
	}
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
		return "", false
	}
	return accountID, true
}

// requireAccount is optionalViewer for endpoints that need a caller
func requireAccount(w http.ResponseWriter, r *http.Request, salt string) (accountID string, ok bool) {
	accountID, err := auth.AccountFromRequest(r, salt)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
		return "", false
	}
	return accountID, true
}
