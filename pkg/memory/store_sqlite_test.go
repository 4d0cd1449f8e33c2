package memory

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kumpel.db"))
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_RecentInteractionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, content := range []string{"erste", "zweite", "dritte"} {
		if err := store.AddInteraction(ctx, RoleUser, content, ""); err != nil {
			t.Fatalf("add interaction: %v", err)
		}
	}

	recent, err := store.RecentInteractions(ctx, 2)
	if err != nil {
		t.Fatalf("recent interactions: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 interactions, got %d", len(recent))
	}
	if recent[0].Content != "dritte" || recent[1].Content != "zweite" {
		t.Fatalf("expected newest first, got %q then %q", recent[0].Content, recent[1].Content)
	}
}

func TestSQLiteStore_AllInteractionsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_ = store.AddInteraction(ctx, RoleUser, "frage", "")
	_ = store.AddInteraction(ctx, RoleAssistant, "antwort", MetaVision)

	all, err := store.AllInteractions(ctx)
	if err != nil {
		t.Fatalf("all interactions: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 interactions, got %d", len(all))
	}
	if all[0].Content != "frage" || all[1].Content != "antwort" {
		t.Fatalf("expected insertion order, got %q then %q", all[0].Content, all[1].Content)
	}
	if all[1].Meta != MetaVision {
		t.Fatalf("expected vision meta preserved, got %q", all[1].Meta)
	}
	if all[0].Timestamp == "" {
		t.Fatal("expected store-assigned timestamp")
	}
}

func TestSQLiteStore_AddInteractionRejectsEmptyRole(t *testing.T) {
	store := newTestStore(t)

	if err := store.AddInteraction(context.Background(), "  ", "inhalt", ""); err == nil {
		t.Fatal("expected error for empty role")
	}
}

func TestSQLiteStore_FactsOrderingAndFilter(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_ = store.AddFact(ctx, SourceHeuristic, "alter Seed", 1)
	_ = store.AddFact(ctx, SourceInteractionPrefix+"t1", "wichtige Regel", 2)
	_ = store.AddFact(ctx, SourceInteractionPrefix+"t2", "neuere wichtige Regel", 2)

	facts, err := store.Facts(ctx, 1)
	if err != nil {
		t.Fatalf("list facts: %v", err)
	}
	if len(facts) != 3 {
		t.Fatalf("expected 3 facts, got %d", len(facts))
	}
	// Importance desc, then recency desc.
	if facts[0].Text != "neuere wichtige Regel" || facts[1].Text != "wichtige Regel" || facts[2].Text != "alter Seed" {
		t.Fatalf("unexpected order: %q, %q, %q", facts[0].Text, facts[1].Text, facts[2].Text)
	}

	important, err := store.Facts(ctx, 2)
	if err != nil {
		t.Fatalf("list facts min importance 2: %v", err)
	}
	if len(important) != 2 {
		t.Fatalf("expected min importance filter to keep 2 facts, got %d", len(important))
	}
}

func TestSQLiteStore_AbbreviationUpsertAndLookup(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.UpsertAbbreviation(ctx, "cad", "Computer Aided Dispatch", "handbuch.pdf"); err != nil {
		t.Fatalf("upsert abbreviation: %v", err)
	}

	ab, found, err := store.LookupAbbreviation(ctx, "CAD")
	if err != nil {
		t.Fatalf("lookup abbreviation: %v", err)
	}
	if !found {
		t.Fatal("expected abbreviation to be found")
	}
	if ab.Code != "CAD" || ab.Meaning != "Computer Aided Dispatch" {
		t.Fatalf("unexpected abbreviation: %+v", ab)
	}

	// Upsert replaces the meaning for the same code.
	if err := store.UpsertAbbreviation(ctx, "CAD", "Computer Aided Design", ""); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	ab, _, err = store.LookupAbbreviation(ctx, "cad")
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if ab.Meaning != "Computer Aided Design" {
		t.Fatalf("expected replaced meaning, got %q", ab.Meaning)
	}

	if _, found, _ := store.LookupAbbreviation(ctx, "DFSM"); found {
		t.Fatal("expected unknown code to report found=false")
	}
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kumpel.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	_ = store.AddInteraction(ctx, RoleUser, "bleibt erhalten", "")
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen sqlite store: %v", err)
	}
	defer reopened.Close()

	all, err := reopened.AllInteractions(ctx)
	if err != nil {
		t.Fatalf("all interactions after reopen: %v", err)
	}
	if len(all) != 1 || all[0].Content != "bleibt erhalten" {
		t.Fatalf("expected persisted interaction, got %+v", all)
	}
}
