package memory

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestRelevanceRanker_TokenOverlapSelects(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.AddFact(ctx, SourceHeuristic, "CAD-Fälle müssen vor 10 Uhr gemeldet werden.", ImportanceSeed); err != nil {
		t.Fatalf("add fact: %v", err)
	}
	if err := store.AddFact(ctx, SourceHeuristic, "Dispatch-Kommunikation erfolgt präzise und mit klaren Deadlines.", ImportanceSeed); err != nil {
		t.Fatalf("add fact: %v", err)
	}

	ranker := NewRelevanceRanker(store, 0, 0)
	got, err := ranker.Top(ctx, "Wann muss ich CAD melden?", 0)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected only the overlapping fact, got %d: %v", len(got), got)
	}
	if !strings.Contains(got[0], "CAD") {
		t.Fatalf("expected the CAD fact, got %q", got[0])
	}
}

func TestRelevanceRanker_ZeroOverlapReturnsNothing(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.AddFact(ctx, SourceHeuristic, "Regelmäßige Backups der Projektdaten sind Pflicht.", ImportanceSeed); err != nil {
		t.Fatalf("add fact: %v", err)
	}

	ranker := NewRelevanceRanker(store, 0, 0)
	got, err := ranker.Top(ctx, "Wie spät ist es?", 0)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no results without token overlap, got %v", got)
	}
}

func TestRelevanceRanker_ImportanceBreaksTies(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.AddFact(ctx, SourceHeuristic, "Backups sind Pflicht.", ImportanceSeed); err != nil {
		t.Fatalf("add fact: %v", err)
	}
	if err := store.AddFact(ctx, SourceHeuristic, "Backups sofort starten.", ImportanceDerived); err != nil {
		t.Fatalf("add fact: %v", err)
	}

	ranker := NewRelevanceRanker(store, 0, 0)
	got, err := ranker.Top(ctx, "backups", 0)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected both facts, got %d: %v", len(got), got)
	}
	if got[0] != "Backups sofort starten." {
		t.Fatalf("expected the higher-importance fact first, got %q", got[0])
	}
}

func TestRelevanceRanker_InteractionSourceOutranksSeed(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.AddFact(ctx, SourceHeuristic, "Serverwartung freitags einplanen.", ImportanceSeed); err != nil {
		t.Fatalf("add fact: %v", err)
	}
	if err := store.AddFact(ctx, SourceInteractionPrefix+"2026-02-01T09:00:00Z", "Serverwartung dauert lange.", ImportanceSeed); err != nil {
		t.Fatalf("add fact: %v", err)
	}

	ranker := NewRelevanceRanker(store, 0, 0)
	got, err := ranker.Top(ctx, "serverwartung", 0)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected both facts, got %d: %v", len(got), got)
	}
	if got[0] != "Serverwartung dauert lange." {
		t.Fatalf("expected the interaction-derived fact first, got %q", got[0])
	}
}

func TestRelevanceRanker_LimitAndStableOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i := 1; i <= 7; i++ {
		text := fmt.Sprintf("Regel Nummer %d gilt weiterhin.", i)
		if err := store.AddFact(ctx, SourceHeuristic, text, ImportanceSeed); err != nil {
			t.Fatalf("add fact %d: %v", i, err)
		}
	}

	ranker := NewRelevanceRanker(store, 0, 0)
	got, err := ranker.Top(ctx, "regel", 0)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(got) != DefaultRankLimit {
		t.Fatalf("expected default limit of %d, got %d", DefaultRankLimit, len(got))
	}
	// Equal scores keep store order, which is newest first.
	if got[0] != "Regel Nummer 7 gilt weiterhin." {
		t.Fatalf("expected the newest fact first on a tie, got %q", got[0])
	}

	two, err := ranker.Top(ctx, "regel", 2)
	if err != nil {
		t.Fatalf("top with limit: %v", err)
	}
	if len(two) != 2 {
		t.Fatalf("expected per-call limit of 2, got %d", len(two))
	}
}

func TestRelevanceRanker_MinImportanceFilter(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.AddFact(ctx, SourceHeuristic, "CAD-Fälle vor 10 Uhr melden.", ImportanceSeed); err != nil {
		t.Fatalf("add fact: %v", err)
	}
	if err := store.AddFact(ctx, SourceInteractionPrefix+"2026-02-01T09:00:00Z", "CAD-Meldungen gehen an das Dispatch-Team.", ImportanceDerived); err != nil {
		t.Fatalf("add fact: %v", err)
	}

	ranker := NewRelevanceRanker(store, 0, ImportanceDerived)
	got, err := ranker.Top(ctx, "cad", 0)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected only the derived fact, got %d: %v", len(got), got)
	}
	if got[0] != "CAD-Meldungen gehen an das Dispatch-Team." {
		t.Fatalf("unexpected fact: %q", got[0])
	}
}
