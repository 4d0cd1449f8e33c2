package memory

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Dispatch shorthand looks like "CAD", "DFSM", "LSTC": 3 to 8 upper
// case letters or digits on word boundaries.
var abbrevCodeRegex = regexp.MustCompile(`\b[A-Z0-9]{3,8}\b`)

// AbbrevDecoder expands shorthand codes found in free text against the
// stored abbreviation table.
type AbbrevDecoder struct {
	store AbbreviationStore
}

func NewAbbrevDecoder(store AbbreviationStore) *AbbrevDecoder {
	return &AbbrevDecoder{store: store}
}

// Decode returns the known abbreviations mentioned in text, in first
// occurrence order, each code at most once. Codes without a stored
// meaning are silently skipped.
func (d *AbbrevDecoder) Decode(ctx context.Context, text string) ([]Abbreviation, error) {
	codes := abbrevCodeRegex.FindAllString(strings.ToUpper(text), -1)
	seen := make(map[string]struct{}, len(codes))

	var out []Abbreviation
	for _, code := range codes {
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		ab, found, err := d.store.LookupAbbreviation(ctx, code)
		if err != nil {
			return out, fmt.Errorf("decode %q: %w", code, err)
		}
		if found {
			out = append(out, ab)
		}
	}
	return out, nil
}
