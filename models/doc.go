// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, response, and view types.

# Domain Types

  - Poll: options, tallies, expiry, and the viewer's voted state
  - Option: title and vote count
  - Account: poll author or voter

Poll.VotersCount is a pointer because the upstream API omits it for some
polls. Use SafeVotersCount to read it:

	voters := poll.SafeVotersCount() // 0 when absent or negative

# Request Types

  - RegisterAccountRequest: display_name
  - CreatePollRequest: options, expires_in, multiple
  - VoteRequest: choices (option indices, in submission order)

# Response Types

  - RegisterAccountResponse: account_id, access_token
  - ErrorResponse: error, message

# View Types

PollView, OptionView, and FooterView carry everything a host view needs to
draw the poll widget: per-option selection icons, percentages, bar widths,
and the footer text.

# Icons

	IconCheckbox        = "square"
	IconCheckboxChecked = "checkmark.square"
	IconRadio           = "circle"
	IconRadioChecked    = "record.circle"
*/
package models
