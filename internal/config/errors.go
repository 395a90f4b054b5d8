package config

import (
	"errors"
	"fmt"

	"github.com/agnivade/levenshtein"
)

var (
	// ErrMissingKey marks a configuration file without one of the required
	// top-level keys.
	ErrMissingKey = errors.New("missing required key")

	// ErrNoColours marks a configuration without any sky colour.
	ErrNoColours = errors.New("sky_colours must contain at least one hour")
)

// Error reports a configuration file that is missing, unreadable, malformed
// or incomplete. Nothing can be generated without it, so callers treat it as
// fatal.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// maxSuggestDistance bounds how different a present key may be from a
// required one and still be offered as a typo.
const maxSuggestDistance = 2

// suggest returns the key in present closest to want, or "" if none is
// within maxSuggestDistance edits.
func suggest(want string, present []string) string {
	best, bestDist := "", maxSuggestDistance+1
	for _, k := range present {
		if k == want {
			continue
		}
		if d := levenshtein.ComputeDistance(want, k); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}
