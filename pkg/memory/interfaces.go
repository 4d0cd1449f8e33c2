package memory

import "context"

// InteractionStore is the append-only record of exchanged turns.
type InteractionStore interface {
	AddInteraction(ctx context.Context, role, content, meta string) error
	RecentInteractions(ctx context.Context, limit int) ([]Interaction, error)
	AllInteractions(ctx context.Context) ([]Interaction, error)
}

// FactStore persists derived and seeded knowledge. AddFact does not
// dedup; callers are responsible for checking normalized text first.
type FactStore interface {
	AddFact(ctx context.Context, source, text string, importance int) error
	Facts(ctx context.Context, minImportance int) ([]Fact, error)
}

// AbbreviationStore resolves dispatch shorthand codes.
type AbbreviationStore interface {
	UpsertAbbreviation(ctx context.Context, code, meaning, ref string) error
	LookupAbbreviation(ctx context.Context, code string) (Abbreviation, bool, error)
	AllAbbreviations(ctx context.Context) ([]Abbreviation, error)
}

// Store bundles everything the router needs from persistence.
type Store interface {
	InteractionStore
	FactStore
	AbbreviationStore
	Close() error
}
