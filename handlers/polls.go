// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/pollview/cliparse"
	"github.com/danielhkuo/pollview/middleware"
	"github.com/danielhkuo/pollview/models"
)

const (
	minOptions   = 2
	maxOptions   = 10
	maxOptionLen = 50
	maxExpiresIn = 30 * 24 * 60 * 60 // seconds
)

type PollHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	clock clockwork.Clock
}

func NewPollHandler(db *sql.DB, cfg cliparse.Config) *PollHandler {
	return &PollHandler{db: db, cfg: cfg, clock: clockwork.NewRealClock()}
}

// CreatePoll handles POST /api/v1/polls
// The caller becomes the poll's author
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r, h.cfg.TokenSalt)
	if !ok {
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if len(req.Options) < minOptions || len(req.Options) > maxOptions {
		middleware.ErrorResponse(w, http.StatusBadRequest, "a poll needs between 2 and 10 options")
		return
	}
	titles := make([]string, len(req.Options))
	for i, o := range req.Options {
		titles[i] = strings.TrimSpace(o)
		if titles[i] == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "option titles cannot be empty")
			return
		}
		if utf8.RuneCountInString(titles[i]) > maxOptionLen {
			middleware.ErrorResponse(w, http.StatusBadRequest, "option title is too long")
			return
		}
	}
	if req.ExpiresIn < 0 || req.ExpiresIn > maxExpiresIn {
		middleware.ErrorResponse(w, http.StatusBadRequest, "expires_in out of range")
		return
	}

	ctx := r.Context()
	exists, err := accountExists(ctx, h.db, accountID)
	if err != nil {
		slog.Error("failed to verify account", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Account not found")
		return
	}

	now := h.clock.Now().UTC()
	var expiresAt *time.Time
	if req.ExpiresIn > 0 {
		t := now.Add(time.Duration(req.ExpiresIn) * time.Second)
		expiresAt = &t
	}

	pollID := uuid.NewString()

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO poll (id, author_account_id, multiple, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, pollID, accountID, req.Multiple, expiresAt, now)
	if err != nil {
		slog.Error("failed to insert poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	for i, title := range titles {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO poll_option (id, poll_id, position, title)
			VALUES ($1, $2, $3, $4)
		`, uuid.NewString(), pollID, i, title)
		if err != nil {
			slog.Error("failed to insert option", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	slog.Info("poll created", "poll_id", pollID, "author", accountID, "options", len(titles), "multiple", req.Multiple)

	poll, err := loadPoll(ctx, h.db, pollID, accountID, now)
	if err != nil {
		slog.Error("failed to load created poll", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, poll)
}

// GetPoll handles GET /api/v1/polls/{id}
// voted and own_votes are relative to the caller, omitted when anonymous
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	viewerID, ok := optionalViewer(w, r, h.cfg.TokenSalt)
	if !ok {
		return
	}

	poll, err := loadPoll(r.Context(), h.db, pollID, viewerID, h.clock.Now())
	if errors.Is(err, errPollNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to load poll", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// ClosePoll handles POST /api/v1/polls/{id}/close
// Ends the poll early. Only its author may close it.
func (h *PollHandler) ClosePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	accountID, ok := requireAccount(w, r, h.cfg.TokenSalt)
	if !ok {
		return
	}

	ctx := r.Context()
	now := h.clock.Now().UTC()

	poll, err := loadPoll(ctx, h.db, pollID, accountID, now)
	if errors.Is(err, errPollNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to load poll", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if poll.AuthorAccountID != accountID {
		middleware.ErrorResponse(w, http.StatusForbidden, "Only the author can close this poll")
		return
	}
	if poll.Expired {
		middleware.ErrorResponse(w, http.StatusConflict, "Poll has already ended")
		return
	}

	_, err = h.db.ExecContext(ctx, `
		UPDATE poll SET closed_at = $1 WHERE id = $2 AND closed_at IS NULL
	`, now, pollID)
	if err != nil {
		slog.Error("failed to close poll", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close poll")
		return
	}

	slog.Info("poll closed", "poll_id", pollID)

	poll, err = loadPoll(ctx, h.db, pollID, accountID, now)
	if err != nil {
		slog.Error("failed to reload poll", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}
