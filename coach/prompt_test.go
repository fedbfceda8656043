package coach

import (
	"strings"
	"testing"
)

func TestToneLabel_Buckets(t *testing.T) {
	t.Parallel()

	cases := []struct {
		tone int
		want string
	}{
		{0, "Casual"},
		{32, "Casual"},
		{33, "Neutral/Balanced"},
		{50, "Neutral/Balanced"},
		{65, "Neutral/Balanced"},
		{66, "Formal/Professional"},
		{100, "Formal/Professional"},
	}
	for _, tc := range cases {
		if got := ToneLabel(tc.tone); got != tc.want {
			t.Fatalf("ToneLabel(%d)=%q, want %q", tc.tone, got, tc.want)
		}
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	t.Parallel()

	a := BuildPrompt("hey, can we talk about the project timeline?", ScenarioProfessional, 70, "my manager")
	b := BuildPrompt("hey, can we talk about the project timeline?", ScenarioProfessional, 70, "my manager")
	if a != b {
		t.Fatalf("identical inputs produced different prompts")
	}
}

func TestBuildPrompt_Sections(t *testing.T) {
	t.Parallel()

	p := BuildPrompt("hello there friend", ScenarioFamily, 20, "my sister")
	for _, want := range []string{
		"**CONVERSATION CONTEXT:**",
		"Scenario: Family",
		"Interpretation: Casual",
		"Additional Context: my sister",
		"**CONVERSATION HISTORY:**",
		"hello there friend",
		"exactly 3 response options",
		`The "responses" array must contain exactly 3 entries.`,
	} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestBuildPrompt_EmptyContext(t *testing.T) {
	t.Parallel()

	p := BuildPrompt("some history text", ScenarioSales, 50, "   ")
	if !strings.Contains(p, "Additional Context: None provided") {
		t.Fatalf("blank context not replaced:\n%s", p)
	}
}
