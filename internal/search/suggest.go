package search

import (
	"strings"

	edlib "github.com/hbollon/go-edlib"
)

// suggestThreshold is the minimum Jaro-Winkler similarity before a name
// is offered as a did-you-mean candidate.
const suggestThreshold = 0.82

// suggestScanCap bounds how many distinct names the suggestion pass
// scores; beyond this the index is large enough that a miss is cheap to
// refine by hand.
const suggestScanCap = 5000

// suggest returns the closest existing symbol name to a query that
// matched nothing, or "" when no name is close enough.
func (e *Engine) suggest(query string) string {
	if query == "" {
		return ""
	}
	folded := strings.ToLower(query)
	best := ""
	var bestScore float32

	names := e.idx.Names()
	if len(names) > suggestScanCap {
		names = names[:suggestScanCap]
	}
	for _, name := range names {
		score, err := edlib.StringsSimilarity(folded, strings.ToLower(name), edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score >= suggestThreshold && score > bestScore {
			best, bestScore = name, score
		}
	}
	return best
}
