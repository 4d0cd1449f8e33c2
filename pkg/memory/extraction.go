package memory

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/dotsetgreg/kumpel/pkg/logger"
)

var (
	sentenceSplitRegex = regexp.MustCompile(`[.!?]\s+`)
	whitespaceRegex    = regexp.MustCompile(`\s+`)
)

// SalienceFunc decides whether a sentence is worth keeping as a fact.
type SalienceFunc func(sentence string) bool

// PhraseSalience returns a predicate matching sentences that contain at
// least one of the given phrases, case-insensitively. The phrase list
// is data so a different locale swaps phrases without touching the scan.
func PhraseSalience(phrases ...string) SalienceFunc {
	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			lowered = append(lowered, p)
		}
	}
	return func(sentence string) bool {
		lower := strings.ToLower(sentence)
		for _, p := range lowered {
			if strings.Contains(lower, p) {
				return true
			}
		}
		return false
	}
}

// defaultSalientPhrases are German obligation and importance markers.
var defaultSalientPhrases = []string{"muss", "müssen", "soll", "sollen", "wichtig", "immer"}

// defaultSeedFacts is built-in dispatch-desk knowledge merged into the
// fact store on every refresh.
var defaultSeedFacts = []string{
	"CAD-Fälle müssen vor 10 Uhr gemeldet werden.",
	"Techniker-Mails an dk-tech.eu enthalten obligatorische Einsatzdetails.",
	"Dispatch-Kommunikation erfolgt präzise und mit klaren Deadlines.",
	"Regelmäßige Backups der Projektdaten sind Pflicht.",
}

// KnowledgeExtractor turns free-text interaction history into a small
// set of atomic facts.
type KnowledgeExtractor struct {
	interactions InteractionStore
	facts        FactStore
	isSalient    SalienceFunc
	seeds        []string
}

// ExtractorOption customizes a KnowledgeExtractor.
type ExtractorOption func(*KnowledgeExtractor)

// WithSalience replaces the default phrase-based salience predicate.
func WithSalience(fn SalienceFunc) ExtractorOption {
	return func(e *KnowledgeExtractor) {
		if fn != nil {
			e.isSalient = fn
		}
	}
}

// WithSeedFacts replaces the built-in seed fact table.
func WithSeedFacts(seeds []string) ExtractorOption {
	return func(e *KnowledgeExtractor) {
		e.seeds = seeds
	}
}

func NewKnowledgeExtractor(interactions InteractionStore, facts FactStore, opts ...ExtractorOption) *KnowledgeExtractor {
	e := &KnowledgeExtractor{
		interactions: interactions,
		facts:        facts,
		isSalient:    PhraseSalience(defaultSalientPhrases...),
		seeds:        defaultSeedFacts,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Refresh scans the whole interaction log for salient sentences not yet
// stored as facts, then merges in missing seed facts. It returns the
// newly inserted facts; running twice on unchanged input inserts
// nothing the second time.
//
// A failed write skips only that candidate, the scan continues.
func (e *KnowledgeExtractor) Refresh(ctx context.Context) ([]Fact, error) {
	existing, err := e.facts.Facts(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("load existing facts: %w", err)
	}
	seen := make(map[string]struct{}, len(existing))
	for _, f := range existing {
		seen[normalizeFact(f.Text)] = struct{}{}
	}

	interactions, err := e.interactions.AllInteractions(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan interactions: %w", err)
	}

	var added []Fact
	for _, in := range interactions {
		for _, sentence := range splitSentences(in.Content) {
			if !e.isSalient(sentence) {
				continue
			}
			key := normalizeFact(sentence)
			if _, ok := seen[key]; ok {
				continue
			}
			source := SourceInteractionPrefix + in.Timestamp
			if err := e.facts.AddFact(ctx, source, sentence, ImportanceDerived); err != nil {
				logger.WarnCF("memory", "Skipping fact candidate after store error", map[string]interface{}{
					"error":  err.Error(),
					"source": source,
				})
				continue
			}
			seen[key] = struct{}{}
			added = append(added, Fact{Source: source, Text: sentence, Importance: ImportanceDerived})
		}
	}

	for _, seed := range e.seeds {
		key := normalizeFact(seed)
		if _, ok := seen[key]; ok {
			continue
		}
		if err := e.facts.AddFact(ctx, SourceHeuristic, seed, ImportanceSeed); err != nil {
			logger.WarnCF("memory", "Skipping seed fact after store error", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}
		seen[key] = struct{}{}
		added = append(added, Fact{Source: SourceHeuristic, Text: seed, Importance: ImportanceSeed})
	}

	return added, nil
}

// normalizeFact is the dedup key: trimmed, whitespace runs collapsed,
// lower-cased. Two sentences differing only in case or spacing are the
// same fact.
func normalizeFact(text string) string {
	return strings.ToLower(strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " ")))
}

// splitSentences cuts content on terminal punctuation followed by
// whitespace. A message without such a boundary is one candidate.
func splitSentences(message string) []string {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}
	parts := sentenceSplitRegex.Split(message, -1)
	if len(parts) == 1 {
		return []string{message}
	}
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
