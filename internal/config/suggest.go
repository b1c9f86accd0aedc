package config

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Suggest returns the closest candidate to name when it is within
// max(2, len(name)/3) edits. Ties keep the earlier candidate.
func Suggest(name string, candidates []string) (string, bool) {
	limit := max(2, len(name)/3)
	best, bestDist := "", limit+1
	lower := strings.ToLower(name)
	for _, c := range candidates {
		if c == name {
			continue
		}
		d := levenshtein.ComputeDistance(lower, strings.ToLower(c))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, best != ""
}
