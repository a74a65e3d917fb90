// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/pollview/cliparse"
	"github.com/danielhkuo/pollview/middleware"
	"github.com/danielhkuo/pollview/widget"
)

type ViewHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	clock clockwork.Clock
}

func NewViewHandler(db *sql.DB, cfg cliparse.Config) *ViewHandler {
	return &ViewHandler{db: db, cfg: cfg, clock: clockwork.NewRealClock()}
}

// RenderView handles GET /api/v1/polls/{id}/view?width=&show_results=
// Returns the widget state a client would draw for the caller: option
// rows, result bars sized to width, and the footer line.
func (h *ViewHandler) RenderView(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	var width float64
	if v := r.URL.Query().Get("width"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed < 0 || math.IsInf(parsed, 0) || math.IsNaN(parsed) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "width must be a non-negative number")
			return
		}
		width = parsed
	}

	var showResults bool
	if v := r.URL.Query().Get("show_results"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "show_results must be a boolean")
			return
		}
		showResults = parsed
	}

	viewerID, ok := optionalViewer(w, r, h.cfg.TokenSalt)
	if !ok {
		return
	}

	session := widget.New(widget.Config{
		PollID:          pollID,
		Fetcher:         dbPolls{db: h.db, viewerID: viewerID, clock: h.clock},
		ViewerAccountID: viewerID,
		Clock:           h.clock,
	})
	defer session.Close()

	if err := session.Load(r.Context()); err != nil {
		if errors.Is(err, errPollNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
			return
		}
		slog.Error("failed to load poll view", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if showResults {
		session.ShowResults()
	}

	middleware.JSONResponse(w, http.StatusOK, session.Render(width))
}
