// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package widget binds a poll to its collaborators and renders view state.

A Session replaces ambient view context with explicit configuration:

	s := widget.New(widget.Config{
		PollID:          pollID,
		Fetcher:         apiClient,
		Submitter:       apiClient,
		ViewerAccountID: viewerID,
		StatusAuthorID:  status.AccountID,
	})
	defer s.Close()

	if err := s.Load(ctx); err != nil {
		// stale data stays visible
	}
	go s.Watch(ctx)

	s.Subscribe(func() { draw(s.Render(width)) })

Render returns a models.PollView: option rows with selection icons, and
percentages and bar widths when results are visible (explicit request or
own status), plus the footer.

Submit refreshes the poll after a successful vote. Close discards any
fetch or submission result that arrives afterwards.
*/
package widget
