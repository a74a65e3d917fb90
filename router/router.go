// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/pollview/cliparse"
	"github.com/danielhkuo/pollview/handlers"
	"github.com/danielhkuo/pollview/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(db, cfg)
	pollHandler := handlers.NewPollHandler(db, cfg)
	votingHandler := handlers.NewVotingHandler(db, cfg)
	viewHandler := handlers.NewViewHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Accounts
	mux.HandleFunc("POST /accounts", middleware.WithLogging(accountHandler.Register))
	mux.HandleFunc("GET /accounts/me", middleware.WithLogging(accountHandler.GetMe))

	// Polls
	mux.HandleFunc("POST /api/v1/polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("GET /api/v1/polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("POST /api/v1/polls/{id}/close", middleware.WithLogging(pollHandler.ClosePoll))

	// Voting
	mux.HandleFunc("POST /api/v1/polls/{id}/votes", middleware.WithLogging(votingHandler.Vote))

	// Rendered widget state
	mux.HandleFunc("GET /api/v1/polls/{id}/view", middleware.WithLogging(viewHandler.RenderView))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pollview API v1"))
	})

	return mux
}
