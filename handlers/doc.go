// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the pollview API.

# Handler Types

Each handler is a struct with database, config and clock dependencies:

  - AccountHandler: Registration and current account
  - PollHandler: Create, fetch and close polls
  - VotingHandler: Vote submission
  - ViewHandler: Rendered widget state

Handlers are created via constructor functions that accept *sql.DB and Config:

	pollHandler := handlers.NewPollHandler(db, cfg)

# Authentication

Callers send "Authorization: Bearer <access_token>" from POST /accounts.
Reads accept anonymous callers; voted and own_votes are then omitted.
Writes require a token for an existing account.

# Poll Lifecycle

A poll is open until its expires_at passes or its author closes it. Either
way it is reported as expired and rejects votes with 409.

	POST /api/v1/polls            → CreatePoll
	GET  /api/v1/polls/{id}       → GetPoll
	POST /api/v1/polls/{id}/close → ClosePoll (author only)

# Voting

	POST /api/v1/polls/{id}/votes → Vote

Choices are option indices. Single choice polls take exactly one, multiple
choice polls any non-empty set without repeats. Each account votes once; the
ballot table's unique (poll_id, account_id) key turns a racing second vote
into 409.

# Tallies

An option's votes_count counts the vote rows for it. The poll's
votes_count sums them and voters_count counts distinct accounts.

# Views

	GET /api/v1/polls/{id}/view?width=320&show_results=true → RenderView

Runs a widget.Session over the database and returns the models.PollView a
client would draw.
*/
package handlers
