// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package footer builds the poll footer: vote tally, separator, and either
// "Closed" or a live countdown to the poll's expiry.
package footer
