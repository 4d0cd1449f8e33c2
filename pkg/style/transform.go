package style

import "strings"

// Transformer rewrites raw model answers in the voice of its profile.
type Transformer struct {
	profile Profile
}

func NewTransformer(profile Profile) *Transformer {
	return &Transformer{profile: profile}
}

// Profile returns the profile the transformer was built with.
func (t *Transformer) Profile() Profile {
	return t.profile
}

func (t *Transformer) Apply(raw string) string {
	return Apply(raw, t.profile)
}

// Apply frames raw between the profile's greeting and closing and tightens
// the wording paragraph by paragraph. Same input, same output.
func Apply(raw string, profile Profile) string {
	body := strings.TrimSpace(raw)
	if body == "" {
		return profile.Greeting + "\n\n" + profile.Closing
	}

	var paragraphs []string
	if strings.Contains(body, "\n\n") {
		for _, part := range strings.Split(body, "\n\n") {
			if part = strings.TrimSpace(part); part != "" {
				paragraphs = append(paragraphs, part)
			}
		}
	}
	if len(paragraphs) == 0 {
		// No blank-line boundary, treat the whole answer as one paragraph.
		paragraphs = []string{strings.ReplaceAll(body, "\n", " ")}
	}

	out := make([]string, 0, len(paragraphs)+4)
	out = append(out, profile.Greeting, "")
	for _, para := range paragraphs {
		para = strings.ReplaceAll(para, "ich denke", "ich empfehle")
		para = strings.ReplaceAll(para, "vielleicht", "bitte")
		if !strings.HasSuffix(para, ".") && !strings.HasSuffix(para, "!") && !strings.HasSuffix(para, "?") {
			para += "."
		}
		out = append(out, para)
	}
	out = append(out, "", profile.Closing)
	return strings.Join(out, "\n")
}
