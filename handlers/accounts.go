// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/pollview/auth"
	"github.com/danielhkuo/pollview/cliparse"
	"github.com/danielhkuo/pollview/middleware"
	"github.com/danielhkuo/pollview/models"
)

const maxDisplayNameLen = 30

type AccountHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	clock clockwork.Clock
}

func NewAccountHandler(db *sql.DB, cfg cliparse.Config) *AccountHandler {
	return &AccountHandler{db: db, cfg: cfg, clock: clockwork.NewRealClock()}
}

// Register handles POST /accounts
// Creates an account and returns its access token
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterAccountRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "display_name is required")
		return
	}
	if utf8.RuneCountInString(name) > maxDisplayNameLen {
		middleware.ErrorResponse(w, http.StatusBadRequest, "display_name is too long")
		return
	}

	accountID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate account ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO account (id, display_name, created_at)
		VALUES ($1, $2, $3)
	`, accountID, name, h.clock.Now().UTC())
	if err != nil {
		slog.Error("failed to insert account", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	slog.Info("account registered", "account_id", accountID)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterAccountResponse{
		AccountID:   accountID,
		AccessToken: auth.GenerateAccessToken(accountID, h.cfg.TokenSalt),
	})
}

// GetMe handles GET /accounts/me
func (h *AccountHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r, h.cfg.TokenSalt)
	if !ok {
		return
	}

	var account models.Account
	err := h.db.QueryRowContext(r.Context(), `
		SELECT id, display_name, created_at FROM account WHERE id = $1
	`, accountID).Scan(&account.ID, &account.DisplayName, &account.CreatedAt)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Account not found")
		return
	}
	if err != nil {
		slog.Error("failed to query account", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, account)
}
