// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package projector

import (
	"math"

	"github.com/danielhkuo/pollview/models"
)

// Result holds the display values for a single option
type Result struct {
	Index    int
	OptionID string
	Ratio    float64
	Percent  int
	BarWidth float64
}

// Ratio returns the share of voters that picked the option, in [0, 1].
// The denominator is the voter count, not the vote count, so a poll with
// no recorded voters yields 0 even if option tallies are nonzero.
func Ratio(poll models.Poll, option models.Option) float64 {
	voters := poll.SafeVotersCount()
	if voters == 0 || option.VotesCount <= 0 {
		return 0.0
	}

	r := float64(option.VotesCount) / float64(voters)
	if r > 1 {
		return 1.0
	}
	return r
}

// Percent returns the ratio as a whole percentage.
// Halves round away from zero (math.Round), so 12.5% displays as 13%.
func Percent(poll models.Poll, option models.Option) int {
	return int(math.Round(Ratio(poll, option) * 100))
}

// BarWidth scales containerWidth by the option's ratio
func BarWidth(poll models.Poll, option models.Option, containerWidth float64) float64 {
	if containerWidth <= 0 || math.IsNaN(containerWidth) || math.IsInf(containerWidth, 0) {
		return 0
	}
	return containerWidth * Ratio(poll, option)
}

// ShouldShowResults reports whether live tallies should be drawn.
// Results show when explicitly requested, or when the viewer authored the
// status the poll belongs to. An anonymous viewer or unknown author never
// matches.
func ShouldShowResults(requested bool, authorAccountID, viewerAccountID string) bool {
	if requested {
		return true
	}
	if authorAccountID == "" || viewerAccountID == "" {
		return false
	}
	return authorAccountID == viewerAccountID
}

// Project computes display values for every option, in option order
func Project(poll models.Poll, containerWidth float64) []Result {
	results := make([]Result, len(poll.Options))
	for i, opt := range poll.Options {
		results[i] = Result{
			Index:    i,
			OptionID: opt.ID,
			Ratio:    Ratio(poll, opt),
			Percent:  Percent(poll, opt),
			BarWidth: BarWidth(poll, opt, containerWidth),
		}
	}
	return results
}
