// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/pollview/auth"
	"github.com/danielhkuo/pollview/models"
	"github.com/danielhkuo/pollview/testutil"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestCreatePoll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewPollHandler(db, cfg)
	handler.clock = clockwork.NewFakeClockAt(testNow)

	accountID, token := testutil.CreateTestAccount(t, db, cfg, "Author")

	tests := []struct {
		name           string
		token          string
		body           models.CreatePollRequest
		expectedStatus int
	}{
		{
			name:           "single choice poll",
			token:          token,
			body:           models.CreatePollRequest{Options: []string{"Yes", "No"}},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "multiple choice poll with expiry",
			token:          token,
			body:           models.CreatePollRequest{Options: []string{"A", "B", "C"}, Multiple: true, ExpiresIn: 3600},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing token",
			body:           models.CreatePollRequest{Options: []string{"Yes", "No"}},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "token for unknown account",
			token:          auth.GenerateAccessToken("ghost", cfg.TokenSalt),
			body:           models.CreatePollRequest{Options: []string{"Yes", "No"}},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "one option",
			token:          token,
			body:           models.CreatePollRequest{Options: []string{"Only"}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "too many options",
			token:          token,
			body:           models.CreatePollRequest{Options: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "blank option",
			token:          token,
			body:           models.CreatePollRequest{Options: []string{"Yes", "  "}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "negative expiry",
			token:          token,
			body:           models.CreatePollRequest{Options: []string{"Yes", "No"}, ExpiresIn: -1},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var headers map[string]string
			if tt.token != "" {
				headers = testutil.BearerHeader(tt.token)
			}
			req := testutil.MakeRequest("POST", "/api/v1/polls", tt.body, headers)
			w := httptest.NewRecorder()

			handler.CreatePoll(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusCreated {
				return
			}

			var poll models.Poll
			testutil.AssertJSON(t, w, &poll)

			if poll.ID == "" {
				t.Error("Expected poll id")
			}
			if poll.AuthorAccountID != accountID {
				t.Errorf("Expected author %s, got %s", accountID, poll.AuthorAccountID)
			}
			if poll.Multiple != tt.body.Multiple {
				t.Errorf("Expected multiple=%v, got %v", tt.body.Multiple, poll.Multiple)
			}
			if len(poll.Options) != len(tt.body.Options) {
				t.Fatalf("Expected %d options, got %d", len(tt.body.Options), len(poll.Options))
			}
			for i, opt := range poll.Options {
				if opt.Title != tt.body.Options[i] {
					t.Errorf("Option %d: expected %q, got %q", i, tt.body.Options[i], opt.Title)
				}
			}
			if poll.Expired || poll.VotesCount != 0 || poll.HasVoted() {
				t.Errorf("New poll should be open and empty: %+v", poll)
			}

			if tt.body.ExpiresIn == 0 {
				if poll.ExpiresAt != nil {
					t.Errorf("Expected no expiry, got %v", poll.ExpiresAt)
				}
			} else {
				want := testNow.Add(time.Duration(tt.body.ExpiresIn) * time.Second)
				if poll.ExpiresAt == nil || !poll.ExpiresAt.Equal(want) {
					t.Errorf("Expected expires_at %v, got %v", want, poll.ExpiresAt)
				}
			}
		})
	}
}

func TestGetPoll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewPollHandler(db, cfg)
	handler.clock = clockwork.NewFakeClockAt(testNow)

	authorID, _ := testutil.CreateTestAccount(t, db, cfg, "Author")
	aliceID, aliceToken := testutil.CreateTestAccount(t, db, cfg, "Alice")
	bobID, _ := testutil.CreateTestAccount(t, db, cfg, "Bob")

	pollID := testutil.CreateTestPoll(t, db, authorID, true, nil, "Red", "Green", "Blue")
	testutil.CastTestVote(t, db, pollID, aliceID, 2, 0)
	testutil.CastTestVote(t, db, pollID, bobID, 0)

	get := func(id string, headers map[string]string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("GET", "/api/v1/polls/"+id, nil, headers)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		handler.GetPoll(w, req)
		return w
	}

	t.Run("tallies", func(t *testing.T) {
		w := get(pollID, nil)
		testutil.AssertStatus(t, w, http.StatusOK)

		var poll models.Poll
		testutil.AssertJSON(t, w, &poll)

		if poll.VotesCount != 3 {
			t.Errorf("Expected 3 votes, got %d", poll.VotesCount)
		}
		if poll.SafeVotersCount() != 2 {
			t.Errorf("Expected 2 voters, got %d", poll.SafeVotersCount())
		}
		counts := []int{poll.Options[0].VotesCount, poll.Options[1].VotesCount, poll.Options[2].VotesCount}
		if !slices.Equal(counts, []int{2, 0, 1}) {
			t.Errorf("Expected option counts [2 0 1], got %v", counts)
		}
	})

	t.Run("anonymous viewer has no voted state", func(t *testing.T) {
		w := get(pollID, nil)

		var poll models.Poll
		testutil.AssertJSON(t, w, &poll)

		if poll.Voted != nil || poll.OwnVotes != nil {
			t.Errorf("Expected voted/own_votes to be omitted, got %v %v", poll.Voted, poll.OwnVotes)
		}
	})

	t.Run("own votes keep submission order", func(t *testing.T) {
		w := get(pollID, testutil.BearerHeader(aliceToken))

		var poll models.Poll
		testutil.AssertJSON(t, w, &poll)

		if !poll.HasVoted() {
			t.Error("Expected voted=true for Alice")
		}
		if !slices.Equal(poll.OwnVotes, []int{2, 0}) {
			t.Errorf("Expected own_votes [2 0], got %v", poll.OwnVotes)
		}
	})

	t.Run("viewer who has not voted", func(t *testing.T) {
		_, carolToken := testutil.CreateTestAccount(t, db, cfg, "Carol")
		w := get(pollID, testutil.BearerHeader(carolToken))

		var poll models.Poll
		testutil.AssertJSON(t, w, &poll)

		if poll.Voted == nil || *poll.Voted {
			t.Errorf("Expected voted=false, got %v", poll.Voted)
		}
	})

	t.Run("expired by time", func(t *testing.T) {
		past := testNow.Add(-time.Minute)
		expiredID := testutil.CreateTestPoll(t, db, authorID, false, &past, "A", "B")

		var poll models.Poll
		testutil.AssertJSON(t, get(expiredID, nil), &poll)

		if !poll.Expired {
			t.Error("Expected poll to be expired")
		}
	})

	t.Run("not yet expired", func(t *testing.T) {
		future := testNow.Add(time.Hour)
		openID := testutil.CreateTestPoll(t, db, authorID, false, &future, "A", "B")

		var poll models.Poll
		testutil.AssertJSON(t, get(openID, nil), &poll)

		if poll.Expired {
			t.Error("Expected poll to be open")
		}
	})

	t.Run("not found", func(t *testing.T) {
		testutil.AssertStatus(t, get("nonexistent", nil), http.StatusNotFound)
	})

	t.Run("bad token", func(t *testing.T) {
		testutil.AssertStatus(t, get(pollID, testutil.BearerHeader("bogus")), http.StatusUnauthorized)
	})
}

func TestClosePoll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewPollHandler(db, cfg)
	handler.clock = clockwork.NewFakeClockAt(testNow)

	authorID, authorToken := testutil.CreateTestAccount(t, db, cfg, "Author")
	_, otherToken := testutil.CreateTestAccount(t, db, cfg, "Other")

	closeReq := func(id, token string) *httptest.ResponseRecorder {
		var headers map[string]string
		if token != "" {
			headers = testutil.BearerHeader(token)
		}
		req := testutil.MakeRequest("POST", "/api/v1/polls/"+id+"/close", nil, headers)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		handler.ClosePoll(w, req)
		return w
	}

	t.Run("author closes poll", func(t *testing.T) {
		future := testNow.Add(time.Hour)
		pollID := testutil.CreateTestPoll(t, db, authorID, false, &future, "A", "B")

		w := closeReq(pollID, authorToken)
		testutil.AssertStatus(t, w, http.StatusOK)

		var poll models.Poll
		testutil.AssertJSON(t, w, &poll)
		if !poll.Expired {
			t.Error("Expected closed poll to be expired")
		}
		if poll.ExpiresAt == nil || !poll.ExpiresAt.Equal(testNow) {
			t.Errorf("Expected expires_at to be the close time, got %v", poll.ExpiresAt)
		}

		// Closing twice conflicts
		testutil.AssertStatus(t, closeReq(pollID, authorToken), http.StatusConflict)
	})

	t.Run("non-author is forbidden", func(t *testing.T) {
		pollID := testutil.CreateTestPoll(t, db, authorID, false, nil, "A", "B")
		testutil.AssertStatus(t, closeReq(pollID, otherToken), http.StatusForbidden)
	})

	t.Run("missing token", func(t *testing.T) {
		pollID := testutil.CreateTestPoll(t, db, authorID, false, nil, "A", "B")
		testutil.AssertStatus(t, closeReq(pollID, ""), http.StatusUnauthorized)
	})

	t.Run("already expired", func(t *testing.T) {
		past := testNow.Add(-time.Hour)
		pollID := testutil.CreateTestPoll(t, db, authorID, false, &past, "A", "B")
		testutil.AssertStatus(t, closeReq(pollID, authorToken), http.StatusConflict)
	})

	t.Run("not found", func(t *testing.T) {
		testutil.AssertStatus(t, closeReq("nonexistent", authorToken), http.StatusNotFound)
	})
}
