// Package fuzzy finds the catalog titles closest to a free-text query.
package fuzzy

import (
	"cmp"
	"slices"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/hubenschmidt/reelmatch/core"
)

// DefaultCutoff is the minimum similarity ratio a candidate needs.
const DefaultCutoff = 0.6

// Match is a candidate that cleared the cutoff.
type Match struct {
	Candidate string
	Score     float64
}

// Ratio returns the Ratcliff/Obershelp similarity of two strings in [0, 1],
// comparing them rune by rune.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

// CloseMatches returns up to n candidates whose similarity to word is at
// least cutoff, best first. Equal scores are ordered by candidate, greatest
// first.
func CloseMatches(word string, possibilities []string, n int, cutoff float64) ([]Match, error) {
	if n <= 0 {
		return nil, core.WithContext(core.NewError("fuzzy.close_matches", core.ErrInvalidArgument), "n", n)
	}
	if cutoff < 0 || cutoff > 1 {
		return nil, core.WithContext(core.NewError("fuzzy.close_matches", core.ErrInvalidArgument), "cutoff", cutoff)
	}

	// The query is sequence B: the matcher indexes B once and is reused for
	// every candidate set as sequence A.
	m := difflib.NewMatcher(nil, runes(word))

	var matches []Match
	for _, p := range possibilities {
		m.SetSeq1(runes(p))
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			continue
		}
		if r := m.Ratio(); r >= cutoff {
			matches = append(matches, Match{Candidate: p, Score: r})
		}
	}

	slices.SortFunc(matches, func(a, b Match) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(b.Candidate, a.Candidate)
	})

	if len(matches) > n {
		matches = matches[:n]
	}
	return matches, nil
}

// Best returns the single closest candidate, if any clears the cutoff.
func Best(word string, possibilities []string, cutoff float64) (Match, bool, error) {
	matches, err := CloseMatches(word, possibilities, 1, cutoff)
	if err != nil || len(matches) == 0 {
		return Match{}, false, err
	}
	return matches[0], true, nil
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
