package drillfix

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtractCue_TrimsCommonPrefixAndSuffix(t *testing.T) {
	cases := []struct {
		model, response, want string
	}{
		{"Je vais au marché", "Je vais au marché rapidement", "rapidement"},
		{"Il est arrivé hier matin", "Il est arrivé hier soir", "soir"},
		{"Je vois Marie demain", "Je vois Paul demain", "Paul"},
		{"Il parle français.", "Il parle Anglais.", "Anglais"},
		{"Il est arrivé hier matin", "Il est arrivé ce soir", "ce soir"},
		{"Je l’ai vu", "Je l'ai entendu", "entendu"},
	}
	for _, tc := range cases {
		if got := ExtractCue(tc.model, tc.response); got != tc.want {
			t.Fatalf("ExtractCue(%q, %q) = %q, want %q", tc.model, tc.response, got, tc.want)
		}
	}
}

func TestExtractCue_DegenerateCases(t *testing.T) {
	for _, s := range []string{"Il est arrivé", "Bonjour !", "x"} {
		if got := ExtractCue(s, s); got != "" {
			t.Fatalf("ExtractCue(s, s) = %q for %q", got, s)
		}
	}
	if got := ExtractCue("", "anything"); got != "" {
		t.Fatalf("expected empty cue for empty model, got %q", got)
	}
	if got := ExtractCue("anything", ""); got != "" {
		t.Fatalf("expected empty cue for empty response, got %q", got)
	}
	// whole response differs: not informative
	if got := ExtractCue("Bonjour", "Salut"); got != "" {
		t.Fatalf("expected empty cue when everything differs, got %q", got)
	}
	// the response only drops a word
	if got := ExtractCue("Je vais au marché rapidement", "Je vais au marché"); got != "" {
		t.Fatalf("expected empty cue for a pure deletion, got %q", got)
	}
}

func TestExtractCue_LengthBound(t *testing.T) {
	long := strings.Repeat("é", DefaultMaxCueRunes+1)
	if got := ExtractCue("Je b", "Je "+long); got != "" {
		t.Fatalf("expected empty cue over the bound, got %d runes", utf8.RuneCountInString(got))
	}
	exact := strings.Repeat("é", DefaultMaxCueRunes)
	if got := ExtractCue("Je b", "Je "+exact); got != exact {
		t.Fatalf("expected cue at the bound to survive, got %q", got)
	}
}

func TestRulesExtractCue_UsesConfiguredBound(t *testing.T) {
	r := DefaultRules()
	r.MaxCueRunes = 5
	if got := r.ExtractCue("Je vois Marie", "Je vois Pauline"); got != "" {
		t.Fatalf("expected empty cue, got %q", got)
	}
	r.MaxCueRunes = 10
	if got := r.ExtractCue("Je vois Marie", "Je vois Pauline"); got != "Pauline" {
		t.Fatalf("expected Pauline, got %q", got)
	}
}
