// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrMissingToken = errors.New("missing access token")
	ErrInvalidToken = errors.New("invalid access token")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateAccessToken creates a bearer token for an account.
// Format: <account_id>.<hmac>. Deterministic, so it can be validated
// without storing it.
func GenerateAccessToken(accountID, salt string) string {
	return accountID + "." + sign(accountID, salt)
}

// ValidateAccessToken checks a bearer token and returns the account it
// belongs to
func ValidateAccessToken(token, salt string) (string, error) {
	accountID, sig, ok := strings.Cut(token, ".")
	if !ok || accountID == "" || sig == "" {
		return "", ErrInvalidToken
	}
	if !hmac.Equal([]byte(sig), []byte(sign(accountID, salt))) {
		return "", ErrInvalidToken
	}
	return accountID, nil
}

// AccountFromRequest reads "Authorization: Bearer <token>".
// Returns ErrMissingToken when the header is absent so callers can treat
// anonymous requests differently from bad tokens.
func AccountFromRequest(r *http.Request, salt string) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", ErrInvalidToken
	}
	return ValidateAccessToken(strings.TrimSpace(token), salt)
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// First 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}

func sign(accountID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(accountID))
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(h.Sum(nil)), "=")
}
