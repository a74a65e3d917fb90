// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same DDL runs on sqlite (modernc.org/sqlite) and postgres (lib/pq).

# Tables

  - account: Registered accounts that author polls and vote
  - poll: Poll metadata, expiry and early close
  - poll_option: Options in display order (position is the vote index)
  - ballot: One per account per poll; its unique key makes a vote final
  - vote: One row per chosen option per account

# Relationships

	account 1──* poll
	poll 1──* poll_option
	poll 1──* ballot
	poll 1──* vote
	account 1──* vote

All foreign keys use ON DELETE CASCADE.

# Tallies

An option's votes_count is its number of vote rows. A poll's votes_count
is the total number of vote rows and voters_count the number of distinct
accounts with at least one vote.
*/
package db
