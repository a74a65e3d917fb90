// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/pollview/auth"
	"github.com/danielhkuo/pollview/cliparse"
	"github.com/danielhkuo/pollview/db"
)

// SetupTestDB opens a private in-memory sqlite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Every connection to :memory: is a separate database
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  ":memory:",
		DatabaseType: "sqlite",
		TokenSalt:    "test-token-salt",
		IPHashSalt:   "test-ip-salt",
	}
}

// CreateTestAccount registers an account and returns its ID and access token
func CreateTestAccount(t *testing.T, db *sql.DB, cfg cliparse.Config, displayName string) (accountID, token string) {
	t.Helper()

	accountID, _ = auth.GenerateID(16)
	_, err := db.Exec(`
		INSERT INTO account (id, display_name, created_at)
		VALUES ($1, $2, $3)
	`, accountID, displayName, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	return accountID, auth.GenerateAccessToken(accountID, cfg.TokenSalt)
}

// CreateTestPoll creates a poll with the given options and returns its ID.
// A nil expiresAt means the poll never expires.
func CreateTestPoll(t *testing.T, db *sql.DB, authorID string, multiple bool, expiresAt *time.Time, options ...string) string {
	t.Helper()

	pollID := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO poll (id, author_account_id, multiple, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, pollID, authorID, multiple, expiresAt, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	for i, title := range options {
		_, err := db.Exec(`
			INSERT INTO poll_option (id, poll_id, position, title)
			VALUES ($1, $2, $3, $4)
		`, uuid.NewString(), pollID, i, title)
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
	}

	return pollID
}

// CastTestVote records a ballot and its votes for an account, bypassing validation
func CastTestVote(t *testing.T, db *sql.DB, pollID, accountID string, choices ...int) {
	t.Helper()

	InsertTestBallot(t, db, pollID, accountID)
	for order, choice := range choices {
		_, err := db.Exec(`
			INSERT INTO vote (id, poll_id, account_id, option_position, choice_order, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.NewString(), pollID, accountID, choice, order, time.Now().UTC())
		if err != nil {
			t.Fatalf("Failed to create test vote: %v", err)
		}
	}
}

// InsertTestBallot records only the ballot row, with no option votes
func InsertTestBallot(t *testing.T, db *sql.DB, pollID, accountID string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO ballot (id, poll_id, account_id, submitted_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.NewString(), pollID, accountID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test ballot: %v", err)
	}
}

// CloseTestPoll ends a poll early at the given time
func CloseTestPoll(t *testing.T, db *sql.DB, pollID string, at time.Time) {
	t.Helper()

	_, err := db.Exec(`UPDATE poll SET closed_at = $1 WHERE id = $2`, at.UTC(), pollID)
	if err != nil {
		t.Fatalf("Failed to close test poll: %v", err)
	}
}

// BearerHeader builds an Authorization header map for MakeRequest
func BearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
