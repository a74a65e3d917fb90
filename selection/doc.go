// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package selection tracks which poll options a viewer has chosen and submits
them.

# States

	open ──toggle──▶ selecting ──Submit──▶ submitting ──ok──▶ voted
	  ▲                 │  ▲                    │
	  └──last toggle off┘  └───────error────────┘

	any state ──expiry observed──▶ expired (terminal)

Toggles are silently ignored outside open/selecting. Expiry is observed
either from the poll's expired flag or from ExpiresAt having passed on the
tracker's clock.

# Usage

	tr := selection.NewTracker(poll, submitter, clockwork.NewRealClock())
	cancel := tr.Subscribe(func(s selection.Snapshot) { redraw(s) })
	defer cancel()

	tr.Toggle(0)
	if tr.CanSubmit() {
		if err := tr.Submit(ctx); errors.Is(err, selection.ErrSubmissionFailed) {
			// selection kept, offer retry
		}
	}

Single choice polls hold at most one index: toggling a second option
replaces the first, toggling the selected option clears it. Multiple choice
polls keep indices in the order they were picked, which is also the
submission order.

# Errors

  - ErrInvalidSelection: Submit on an empty selection, expired, or voted poll.
    The submitter is never called.
  - ErrSubmissionInFlight: Submit while another Submit is waiting.
  - ErrSubmissionFailed: the submitter returned an error (wrapped).
  - ErrClosed: the tracker was closed, late results are discarded.
*/
package selection
