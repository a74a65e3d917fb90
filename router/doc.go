// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the pollview API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Accounts:

	POST /accounts    - Register, returns an access token
	GET  /accounts/me - Current account (requires Bearer token)

Polls (Bearer token required except where noted):

	POST /api/v1/polls            - Create poll
	GET  /api/v1/polls/{id}       - Poll with tallies (token optional)
	POST /api/v1/polls/{id}/votes - Vote
	POST /api/v1/polls/{id}/close - End early (author only)
	GET  /api/v1/polls/{id}/view  - Rendered widget state (token optional)

# Handler Initialization

	accountHandler := handlers.NewAccountHandler(db, cfg)
	pollHandler := handlers.NewPollHandler(db, cfg)
	votingHandler := handlers.NewVotingHandler(db, cfg)
	viewHandler := handlers.NewViewHandler(db, cfg)

All handlers receive the database connection and configuration.
*/
package router
