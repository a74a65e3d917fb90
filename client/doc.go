// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package client is an HTTP client for the poll API.

	c := client.New("https://polls.example", client.WithAccessToken(token))
	poll, err := c.FetchPoll(ctx, pollID)
	err = c.SubmitVotes(ctx, pollID, []int{0, 2})

Client satisfies widget.Fetcher and selection.Submitter, so one value can
back a widget.Session. Non-2xx responses are returned as *APIError.
*/
package client
