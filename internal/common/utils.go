package common

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// ClosestMatch returns the candidate nearest to s by edit distance, as long as
// it is within a small, length-dependent limit.
func ClosestMatch(s string, candidates ...string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}

	best, bestDist := "", -1
	for _, cand := range candidates {
		c := strings.ToLower(cand)
		if strings.HasPrefix(c, s) && len(s) >= 2 {
			return cand, true
		}
		dist := levenshtein.ComputeDistance(s, c)
		if dist > distanceLimit(len(c)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = cand, dist
		}
	}
	return best, bestDist >= 0
}

func distanceLimit(n int) int {
	switch {
	case n <= 3:
		return 1
	case n <= 6:
		return 2
	default:
		return 3
	}
}
