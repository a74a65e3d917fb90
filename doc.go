// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the pollview API server.

pollview is the client-side core of a social-feed poll widget plus a small
API server that hosts polls for it. The widget packages (selection,
projector, footer, widget, client) carry no server dependencies and can
be embedded in any host.

# Starting the Server

The server requires environment variables or CLI flags for configuration.
A .env file in the working directory is loaded first:

	DATABASE_URL=pollview.db TOKEN_SALT=... IP_HASH_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -token-salt ... -ip-salt ...

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite file or PostgreSQL connection string
  - TOKEN_SALT (-token-salt): Secret for access token HMAC
  - IP_HASH_SALT (-ip-salt): Secret for hashing voter IPs

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres

# Architecture

Widget core:

  - selection: Per-poll selection state machine and vote submission
  - projector: Result ratios, percentages, bar widths, visibility rule
  - footer: Vote count and closing time summary
  - widget: Session binding a poll to its fetcher, submitter and clock
  - client: HTTP client implementing the fetch and submit services

Server:

  - handlers: HTTP request handlers (accounts, polls, voting, views)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Domain, request, response and view types
  - auth: Access tokens and hashing
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
