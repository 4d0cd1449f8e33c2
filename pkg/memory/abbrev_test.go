package memory

import (
	"context"
	"testing"
)

func TestAbbrevDecoder_DecodeKnownCodes(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.UpsertAbbreviation(ctx, "CAD", "Computer Aided Dispatch", "dispatch"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.UpsertAbbreviation(ctx, "LSTC", "Logistics Support Technical Center", ""); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	dec := NewAbbrevDecoder(store)
	got, err := dec.Decode(ctx, "Der CAD-Fall kam über LSTC herein, CAD bitte prüfen.")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 abbreviations, got %d: %v", len(got), got)
	}
	// First occurrence order, duplicates collapsed.
	if got[0].Code != "CAD" || got[1].Code != "LSTC" {
		t.Fatalf("unexpected order: %v", got)
	}
	if got[0].Meaning != "Computer Aided Dispatch" {
		t.Fatalf("unexpected meaning: %q", got[0].Meaning)
	}
}

func TestAbbrevDecoder_LowercaseTextStillMatches(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.UpsertAbbreviation(ctx, "DFSM", "Dell Field Service Manager", ""); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	dec := NewAbbrevDecoder(store)
	got, err := dec.Decode(ctx, "was bedeutet dfsm hier?")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Code != "DFSM" {
		t.Fatalf("expected DFSM match, got %v", got)
	}
}

func TestAbbrevDecoder_UnknownCodesSkipped(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	dec := NewAbbrevDecoder(store)
	got, err := dec.Decode(ctx, "XYZQ ist unbekannt, ABC auch.")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}

func TestAbbrevDecoder_ShortTokensIgnored(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.UpsertAbbreviation(ctx, "IT", "Informationstechnik", ""); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	dec := NewAbbrevDecoder(store)
	// Two-letter tokens never match the code pattern.
	got, err := dec.Decode(ctx, "IT läuft stabil.")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected short token to be ignored, got %v", got)
	}
}
