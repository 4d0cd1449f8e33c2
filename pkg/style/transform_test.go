package style

import (
	"strings"
	"testing"
)

func testProfile() Profile {
	return BuildProfile(nil, "Eren")
}

func TestApply_Deterministic(t *testing.T) {
	p := testProfile()
	input := "ich denke wir sollten vielleicht warten\n\nMehr Infos folgen"

	first := Apply(input, p)
	second := Apply(input, p)
	if first != second {
		t.Fatalf("expected byte-identical output, got:\n%q\n%q", first, second)
	}
}

func TestApply_FramesWithGreetingAndClosing(t *testing.T) {
	p := testProfile()
	got := Apply("Der Server läuft wieder.", p)

	if !strings.HasPrefix(got, p.Greeting+"\n\n") {
		t.Fatalf("output should start with the greeting, got %q", got)
	}
	if !strings.HasSuffix(got, "\n\n"+p.Closing) {
		t.Fatalf("output should end with the closing, got %q", got)
	}
}

func TestApply_EmptyInput(t *testing.T) {
	p := testProfile()
	want := p.Greeting + "\n\n" + p.Closing

	if got := Apply("", p); got != want {
		t.Fatalf("empty input = %q, want %q", got, want)
	}
	if got := Apply("   \n\t ", p); got != want {
		t.Fatalf("whitespace input = %q, want %q", got, want)
	}
}

func TestApply_Substitutions(t *testing.T) {
	p := testProfile()
	got := Apply("ich denke wir warten vielleicht bis morgen", p)

	if !strings.Contains(got, "ich empfehle wir warten bitte bis morgen.") {
		t.Fatalf("expected substitutions and terminal punctuation, got %q", got)
	}
	if strings.Contains(got, "ich denke") || strings.Contains(got, "vielleicht") {
		t.Fatalf("hedging left in output: %q", got)
	}
}

func TestApply_ParagraphHandling(t *testing.T) {
	p := testProfile()
	got := Apply("Absatz eins\n\nAbsatz zwei!", p)

	want := p.Greeting + "\n\nAbsatz eins.\nAbsatz zwei!\n\n" + p.Closing
	if got != want {
		t.Fatalf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestApply_SingleNewlinesFlattened(t *testing.T) {
	p := testProfile()
	got := Apply("erste Zeile\nzweite Zeile", p)

	if !strings.Contains(got, "erste Zeile zweite Zeile.") {
		t.Fatalf("expected newlines collapsed into one paragraph, got %q", got)
	}
}

func TestApply_KeepsExistingPunctuation(t *testing.T) {
	p := testProfile()
	got := Apply("Läuft das schon?", p)

	if !strings.Contains(got, "Läuft das schon?") || strings.Contains(got, "schon?.") {
		t.Fatalf("existing punctuation should be kept as is, got %q", got)
	}
}
