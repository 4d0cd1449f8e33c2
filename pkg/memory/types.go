package memory

// Roles recorded in the interaction log.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Fact provenance. Derived facts carry SourceInteractionPrefix followed
// by the originating interaction's timestamp, built-in seeds carry
// SourceHeuristic.
const (
	SourceHeuristic         = "heuristic"
	SourceInteractionPrefix = "interaction:"
)

// MetaVision tags turns that carried a screenshot.
const MetaVision = "vision"

// Importance assigned at creation time. Facts are never re-scored.
const (
	ImportanceSeed    = 1
	ImportanceDerived = 2
)

// Interaction is one turn of the conversation log. Rows are append-only:
// never updated, never deleted.
type Interaction struct {
	ID        int64
	Timestamp string
	Role      string
	Content   string
	Meta      string
}

// Fact is a short declarative sentence with provenance and salience.
// The dedup key is the normalized text, enforced by the extractor, not
// the store.
type Fact struct {
	ID         int64
	Timestamp  string
	Source     string
	Text       string
	Importance int
}

// Abbreviation maps a dispatch shorthand code to its meaning, with an
// optional document reference.
type Abbreviation struct {
	Code    string
	Meaning string
	Ref     string
}
