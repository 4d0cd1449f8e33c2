package memory

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// DefaultRankLimit bounds how many facts reach the prompt.
const DefaultRankLimit = 5

var wordTokenRegex = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// RelevanceRanker scores stored facts against a free-text query.
//
// Scoring is purely lexical. Word tokens of the fact that occur in the
// lower-cased query count 2 points each; a fact with no token overlap
// is dropped entirely so unrelated knowledge never pads the prompt.
// Among matches, interaction-derived facts get a 1 point provenance
// bonus over heuristic seeds and the stored importance is added.
type RelevanceRanker struct {
	facts         FactStore
	limit         int
	minImportance int
}

type scoredFact struct {
	fact  Fact
	score int
}

func NewRelevanceRanker(facts FactStore, limit, minImportance int) *RelevanceRanker {
	if limit <= 0 {
		limit = DefaultRankLimit
	}
	if minImportance < 0 {
		minImportance = 0
	}
	return &RelevanceRanker{facts: facts, limit: limit, minImportance: minImportance}
}

// Top returns up to limit fact texts ranked by descending score. A
// limit <= 0 falls back to the ranker's configured default. Ties keep
// store order, importance desc then recency desc.
func (r *RelevanceRanker) Top(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = r.limit
	}
	facts, err := r.facts.Facts(ctx, r.minImportance)
	if err != nil {
		return nil, fmt.Errorf("rank facts: %w", err)
	}

	queryLower := strings.ToLower(query)
	scored := make([]scoredFact, 0, len(facts))
	for _, f := range facts {
		overlap := 0
		for _, token := range wordTokenRegex.FindAllString(strings.ToLower(f.Text), -1) {
			if strings.Contains(queryLower, token) {
				overlap += 2
			}
		}
		if overlap == 0 {
			continue
		}
		score := overlap + f.Importance
		if strings.HasPrefix(f.Source, SourceInteractionPrefix) {
			score++
		}
		scored = append(scored, scoredFact{fact: f, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.fact.Text
	}
	return out, nil
}
