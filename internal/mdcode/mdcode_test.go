package mdcode

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Notes:
// - Regions is checked through the text it covers, which keeps the cases
//   readable; byte offsets are checked once in TestRegions_Offsets.
// - Only what the rewriting passes rely on is covered: fences, indented
//   blocks, inline spans and list continuations. Full CommonMark block
//   parsing is goldmark's job.

func covered(text string) []string {
	var out []string
	for _, s := range Regions(text) {
		out = append(out, text[s.Start:s.End])
	}
	return out
}

// ---------------------------------------------------------------------------
// TestRegions
// ---------------------------------------------------------------------------

func TestRegions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "no code",
			input: "Plain [@smith2020] text.\n",
		},
		{
			name:  "inline span",
			input: "Use `@x` here.",
			want:  []string{"`@x`"},
		},
		{
			name:  "double backtick span holding a single backtick",
			input: "a ``x ` y`` b",
			want:  []string{"``x ` y``"},
		},
		{
			name:  "unmatched backtick is literal",
			input: "a ` b @c",
		},
		{
			name:  "span does not cross a blank line",
			input: "one ` two\n\nthree ` four",
		},
		{
			name:  "span crosses a soft line break",
			input: "one `two\nthree` four",
			want:  []string{"`two\nthree`"},
		},
		{
			name:  "backtick fence",
			input: "before\n```html\n<!-- REFERENCES -->\n```\nafter `x`",
			want:  []string{"```html\n<!-- REFERENCES -->\n```\n", "`x`"},
		},
		{
			name:  "tilde fence",
			input: "~~~\n[@a]\n~~~\n",
			want:  []string{"~~~\n[@a]\n~~~\n"},
		},
		{
			name:  "longer closing fence",
			input: "````\n```\nstill code\n`````\ntext",
			want:  []string{"````\n```\nstill code\n`````\n"},
		},
		{
			name:  "unclosed fence runs to the end",
			input: "```\n@a\n@b",
			want:  []string{"```\n@a\n@b"},
		},
		{
			name:  "backtick in info string is not a fence",
			input: "``` a ` b\ntext",
		},
		{
			name:  "indented block",
			input: "Para.\n\n    [@a]\n\n    more\nAfter `x`",
			want:  []string{"    [@a]\n\n    more", "`x`"},
		},
		{
			name:  "indented block at start",
			input: "\tcode ==x==\n",
			want:  []string{"\tcode ==x=="},
		},
		{
			name:  "indented line continuing a paragraph",
			input: "Para\n    still para",
		},
		{
			name:  "indented list continuation",
			input: "- item\n\n    continued [@a]\n\nText\n\n    code",
			want:  []string{"    code"},
		},
		{
			name:  "ordered list continuation",
			input: "1. item\n\n    continued [@a]",
		},
		{
			name:  "fence right after indented block",
			input: "    code\n```\nfenced\n```\n",
			want:  []string{"    code", "```\nfenced\n```\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tt.want, covered(tt.input)); diff != "" {
				t.Errorf("Regions(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestRegions_Offsets(t *testing.T) {
	t.Parallel()

	got := Regions("a `b` c\n```\nd\n```\n")
	want := []Span{{2, 5}, {8, 18}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Regions() mismatch (-want +got):\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// TestOutside
// ---------------------------------------------------------------------------

func TestOutside(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no code",
			input: "a b",
			want:  "A B",
		},
		{
			name:  "span and fence kept",
			input: "a `b` c\n```\nd\n```\ne",
			want:  "A `b` C\n```\nd\n```\nE",
		},
		{
			name:  "code at both ends",
			input: "`x` y `z`",
			want:  "`x` Y `z`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Outside(tt.input, strings.ToUpper)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Outside() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
