// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/pollview/auth"
	"github.com/danielhkuo/pollview/cliparse"
	"github.com/danielhkuo/pollview/middleware"
	"github.com/danielhkuo/pollview/models"
)

type VotingHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	clock clockwork.Clock
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg, clock: clockwork.NewRealClock()}
}

// Vote handles POST /api/v1/polls/{id}/votes
// Records the caller's choices and returns the updated poll. A vote is
// final: a second submission is rejected.
func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	accountID, ok := requireAccount(w, r, h.cfg.TokenSalt)
	if !ok {
		return
	}

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ctx := r.Context()
	now := h.clock.Now().UTC()

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	exists, err := accountExists(ctx, tx, accountID)
	if err != nil {
		slog.Error("failed to verify account", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Account not found")
		return
	}

	poll, err := loadPoll(ctx, tx, pollID, accountID, now)
	if errors.Is(err, errPollNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to load poll", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Can only vote on polls that are still running
	if poll.Expired {
		middleware.ErrorResponse(w, http.StatusConflict, "Poll has expired")
		return
	}
	if poll.HasVoted() {
		middleware.ErrorResponse(w, http.StatusConflict, "Already voted on this poll")
		return
	}

	if err := validateChoices(req.Choices, len(poll.Options), poll.Multiple); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.IPHashSalt)

	// The ballot's unique key settles concurrent votes from one account
	_, err = tx.ExecContext(ctx, `
		INSERT INTO ballot (id, poll_id, account_id, ip_hash, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), pollID, accountID, ipHash, now)
	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Already voted on this poll")
			return
		}
		slog.Error("failed to insert ballot", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	for order, choice := range req.Choices {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO vote (id, poll_id, account_id, option_position, choice_order, ip_hash, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.NewString(), pollID, accountID, choice, order, ipHash, now)
		if err != nil {
			slog.Error("failed to insert vote", "poll_id", pollID, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	slog.Info("vote recorded", "poll_id", pollID, "choices", len(req.Choices))

	poll, err = loadPoll(ctx, h.db, pollID, accountID, now)
	if err != nil {
		slog.Error("failed to reload poll", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}
