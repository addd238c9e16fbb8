package postprocess

import "testing"

func TestClean_ThinkingBlocks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "complete think block",
			input: "<think>Let me work out the key points.</think>The report covers Q3 revenue.",
			want:  "The report covers Q3 revenue.",
		},
		{
			name:  "complete thinking block",
			input: "<thinking>reasoning here</thinking>Cities grew faster than expected.",
			want:  "Cities grew faster than expected.",
		},
		{
			name:  "truncated think block",
			input: "The study found no effect.<think>wait, should I also",
			want:  "The study found no effect.",
		},
		{
			name:  "no blocks",
			input: "Plain summary text.",
			want:  "Plain summary text.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClean_InstructionEchoes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "here is the summary",
			input: "Here is the summary: The paper proposes a new caching layer.",
			want:  "The paper proposes a new caching layer.",
		},
		{
			name:  "updated summary prefix",
			input: "Updated summary: The merger closed in March.",
			want:  "The merger closed in March.",
		},
		{
			name:  "bare summary prefix",
			input: "Summary: Inflation slowed in the second half.",
			want:  "Inflation slowed in the second half.",
		},
		{
			name:  "sure here is",
			input: "Sure, here's the revised summary: Output fell by 4%.",
			want:  "Output fell by 4%.",
		},
		{
			name:  "mid-text colon untouched",
			input: "The verdict: guilty on all counts.",
			want:  "The verdict: guilty on all counts.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClean_QuoteWrapping(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "double quotes",
			input: `"The factory reopened in May."`,
			want:  "The factory reopened in May.",
		},
		{
			name:  "guillemets",
			input: "«Сезон завершився достроково.»",
			want:  "Сезон завершився достроково.",
		},
		{
			name:  "mismatched quotes kept",
			input: `"Partial quote' stays`,
			want:  `"Partial quote' stays`,
		},
		{
			name:  "interior quotes kept",
			input: `He said "stop" twice.`,
			want:  `He said "stop" twice.`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClean_CombinedPhases(t *testing.T) {
	input := `<think>plan the summary</think>Here is the summary: "Exports rose 12% year over year."`
	want := "Exports rose 12% year over year."
	if got := Clean(input); got != want {
		t.Errorf("Clean(%q) = %q, want %q", input, got, want)
	}
}

func TestClean_EmptyAndWhitespace(t *testing.T) {
	if got := Clean(""); got != "" {
		t.Errorf("Clean(\"\") = %q, want empty", got)
	}
	if got := Clean("   \n\t "); got != "" {
		t.Errorf("expected whitespace-only input to clean to empty, got %q", got)
	}
}
