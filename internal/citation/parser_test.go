package citation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParse(t *testing.T) {
	t.Parallel()

	ignorePos := cmpopts.IgnoreFields(Citation{}, "Position")

	tests := []struct {
		name     string
		input    string
		wantText string
		want     []*Citation
	}{
		// Pandoc
		{
			name:     "bare in-text citation",
			input:    "See @smith2020 for details.",
			wantText: "See <!--CITE:smith2020--> for details.",
			want:     []*Citation{{Key: "smith2020", AuthorInText: true}},
		},
		{
			name:     "bare citation with locator",
			input:    "@smith2020 [p. 33] says",
			wantText: "<!--CITE:smith2020--> says",
			want:     []*Citation{{Key: "smith2020", AuthorInText: true, Locator: "p. 33"}},
		},
		{
			name:     "trailing punctuation is not part of the key",
			input:    "As shown by @smith2020.",
			wantText: "As shown by <!--CITE:smith2020-->.",
			want:     []*Citation{{Key: "smith2020", AuthorInText: true}},
		},
		{
			name:     "bracketed with prefix locator and suffix",
			input:    "[see @doe2019, pp. 33-35, and elsewhere]",
			wantText: "<!--CITE:doe2019-->",
			want: []*Citation{{
				Key: "doe2019", Prefix: "see", Locator: "pp. 33-35", Suffix: "and elsewhere",
			}},
		},
		{
			name:     "bracketed suffix without locator",
			input:    "[@doe2019, among others]",
			wantText: "<!--CITE:doe2019-->",
			want:     []*Citation{{Key: "doe2019", Suffix: "among others"}},
		},
		{
			name:     "numeric locator",
			input:    "[@doe2019, 12-14]",
			wantText: "<!--CITE:doe2019-->",
			want:     []*Citation{{Key: "doe2019", Locator: "12-14"}},
		},
		{
			name:     "author suppressed",
			input:    "Doe says [-@doe2019].",
			wantText: "Doe says <!--CITE:doe2019-->.",
			want:     []*Citation{{Key: "doe2019", AuthorSuppressed: true}},
		},
		{
			name:     "key with internal punctuation",
			input:    "[@Doe:2019-a]",
			wantText: "<!--CITE:Doe:2019-a-->",
			want:     []*Citation{{Key: "Doe:2019-a"}},
		},
		// mmark
		{
			name:     "mmark reference",
			input:    "Per [@RFC2119].",
			wantText: "Per <!--CITE:RFC2119-->.",
			want:     []*Citation{{Key: "RFC2119", Syntax: SyntaxMmark}},
		},
		{
			name:     "mmark markers",
			input:    "[@!RFC8174] [@?BCP14] [@-STD1] [@I-D.ietf-foo-bar]",
			wantText: "<!--CITE:RFC8174--> <!--CITE:BCP14--> <!--CITE:STD1--> <!--CITE:I-D.ietf-foo-bar-->",
			want: []*Citation{
				{Key: "RFC8174", Syntax: SyntaxMmark, Normative: true},
				{Key: "BCP14", Syntax: SyntaxMmark, Informative: true},
				{Key: "STD1", Syntax: SyntaxMmark, AuthorSuppressed: true},
				{Key: "I-D.ietf-foo-bar", Syntax: SyntaxMmark},
			},
		},
		{
			name:     "non standard key falls through to pandoc",
			input:    "[@rfcish]",
			wantText: "<!--CITE:rfcish-->",
			want:     []*Citation{{Key: "rfcish"}},
		},
		// MultiMarkdown
		{
			name:     "mmd citation",
			input:    "Shown in [#knuth1984].",
			wantText: "Shown in <!--CITE:knuth1984-->.",
			want:     []*Citation{{Key: "knuth1984", Syntax: SyntaxMMD}},
		},
		{
			name:     "mmd citation with locator",
			input:    "[p. 23][#knuth1984]",
			wantText: "<!--CITE:knuth1984-->",
			want:     []*Citation{{Key: "knuth1984", Syntax: SyntaxMMD, Locator: "p. 23"}},
		},
		// Not citations
		{
			name:     "email address",
			input:    "Write to someone@example.org today.",
			wantText: "Write to someone@example.org today.",
		},
		{
			name:     "email in brackets",
			input:    "[foo@bar.com]",
			wantText: "[foo@bar.com]",
		},
		{
			name:     "escaped at sign",
			input:    `\@handle`,
			wantText: `\@handle`,
		},
		{
			name:     "url path",
			input:    "https://medium.com/@user/post",
			wantText: "https://medium.com/@user/post",
		},
		{
			name:     "lone at sign",
			input:    "meet @ noon",
			wantText: "meet @ noon",
		},
		{
			name:     "code spans and fences are skipped",
			input:    "Use `@x` here\n```\n@y and ` tick\n```\nand ``[@w]`` and @z",
			wantText: "Use `@x` here\n```\n@y and ` tick\n```\nand ``[@w]`` and <!--CITE:z-->",
			want:     []*Citation{{Key: "z", AuthorInText: true}},
		},
		{
			name:     "tilde fence and indented block are skipped",
			input:    "~~~\n[@x]\n~~~\n\n    @y\n\nText @z",
			wantText: "~~~\n[@x]\n~~~\n\n    @y\n\nText <!--CITE:z-->",
			want:     []*Citation{{Key: "z", AuthorInText: true}},
		},

		// Pandoc groups
		{
			name:     "two-key group",
			input:    "[@smith2020; @doe2019]",
			wantText: "<!--CITE:smith2020--><!--CITE:doe2019-->",
			want: []*Citation{
				{Key: "smith2020", GroupIndex: 0, GroupSize: 2},
				{Key: "doe2019", GroupIndex: 1, GroupSize: 2},
			},
		},
		{
			name:     "three-key group",
			input:    "as argued [@a;@b; @c].",
			wantText: "as argued <!--CITE:a--><!--CITE:b--><!--CITE:c-->.",
			want: []*Citation{
				{Key: "a", GroupIndex: 0, GroupSize: 3},
				{Key: "b", GroupIndex: 1, GroupSize: 3},
				{Key: "c", GroupIndex: 2, GroupSize: 3},
			},
		},
		{
			name:     "group with prefix, locator and suppressed author",
			input:    "[see @a, p. 2; -@b; @c, chap. 3, passim]",
			wantText: "<!--CITE:a--><!--CITE:b--><!--CITE:c-->",
			want: []*Citation{
				{Key: "a", Prefix: "see", Locator: "p. 2", GroupIndex: 0, GroupSize: 3},
				{Key: "b", AuthorSuppressed: true, GroupIndex: 1, GroupSize: 3},
				{Key: "c", Locator: "chap. 3", Suffix: "passim", GroupIndex: 2, GroupSize: 3},
			},
		},
		{
			name:     "group with a non-citation item is plain text",
			input:    "[@a; not a cite]",
			wantText: "[<!--CITE:a-->; not a cite]",
			want:     []*Citation{{Key: "a", AuthorInText: true}},
		},
		{
			name:     "no candidates",
			input:    "Plain text.",
			wantText: "Plain text.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			text, reg := Parse(tt.input)
			if text != tt.wantText {
				t.Errorf("text = %q, want %q", text, tt.wantText)
			}
			if diff := cmp.Diff(tt.want, reg.Citations(), ignorePos); diff != "" {
				t.Errorf("citations mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_DocumentOrderAndPositions(t *testing.T) {
	t.Parallel()

	input := "@a then [@b] then @a"
	_, reg := Parse(input)

	var keys []string
	var positions []int
	for _, c := range reg.Citations() {
		keys = append(keys, c.Key)
		positions = append(positions, c.Position)
	}
	if diff := cmp.Diff([]string{"a", "b", "a"}, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 8, 18}, positions); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b"}, reg.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_GroupPositions(t *testing.T) {
	t.Parallel()

	input := "x [@a; @b, p. 1;  @c]"
	_, reg := Parse(input)

	var positions []int
	for _, c := range reg.Citations() {
		positions = append(positions, c.Position)
	}
	if diff := cmp.Diff([]int{2, 7, 18}, positions); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
}
