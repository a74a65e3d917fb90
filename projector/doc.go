// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package projector turns poll tallies into display quantities.

All functions are pure. They never divide by zero and never return NaN:

	ratio := projector.Ratio(poll, option)          // votes / voters, 0 when voters == 0
	pct := projector.Percent(poll, option)          // round(ratio * 100), halves away from zero
	w := projector.BarWidth(poll, option, 320)      // 320 * ratio

Under multiple choice a voter may vote for several options, so percentages
of one poll can sum to more than 100.

# Result Visibility

	show := projector.ShouldShowResults(requested, poll.AuthorAccountID, viewerID)

Authors always see live tallies. Anonymous viewers only see them on request.
*/
package projector
