// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides access tokens and hashing utilities.

# Access Tokens

Tokens are "<account_id>.<signature>" where the signature is an
HMAC-SHA256 of the account ID, URL-safe base64 without padding:

	token := auth.GenerateAccessToken(accountID, salt)
	accountID, err := auth.ValidateAccessToken(token, salt)

Since tokens are deterministic they can be validated without a database
lookup.

# Requests

	accountID, err := auth.AccountFromRequest(r, salt)
	if errors.Is(err, auth.ErrMissingToken) {
		// anonymous viewer
	}

# ID Generation

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
