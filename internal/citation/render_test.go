package citation

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/alnah/go-mdcite/internal/bibliography"
)

func testBibliography() *bibliography.Registry {
	reg := bibliography.NewRegistry()
	reg.Add(&bibliography.Entry{ID: "smith2020", Author: "Smith, Jane", Year: "2020", Title: "A Study"})
	reg.Add(&bibliography.Entry{ID: "doe", Author: "Doe, J. and Roe, R.", Year: "2019"})
	reg.Add(&bibliography.Entry{ID: "team", Author: "A, B. and C, D. and E, F.", Year: "2021"})
	reg.Add(&bibliography.Entry{ID: "untitled", Title: "Only a Title"})
	reg.Add(&bibliography.Entry{ID: "unused", Author: "Nobody", Year: "1900"})
	return reg
}

func parseWithBibliography(t *testing.T, text string) (string, *Registry) {
	t.Helper()
	out, reg := Parse(text)
	reg.SetBibliography(testBibliography())
	return out, reg
}

func TestRender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		opts  RenderOptions
		want  string
	}{
		{
			name:  "in-text",
			input: "@smith2020",
			want:  `<span class="citation" data-cites="smith2020">Smith (2020)</span>`,
		},
		{
			name:  "parenthetical with locator",
			input: "[@smith2020, p. 3]",
			want:  `<span class="citation" data-cites="smith2020">(Smith 2020, p. 3)</span>`,
		},
		{
			name:  "prefix and suffix",
			input: "[see @smith2020, p. 3, for more]",
			want:  `<span class="citation" data-cites="smith2020">(see Smith 2020, p. 3, for more)</span>`,
		},
		{
			name:  "author suppressed",
			input: "[-@doe]",
			want:  `<span class="citation" data-cites="doe">(2019)</span>`,
		},
		{
			name:  "two authors",
			input: "[@doe]",
			want:  `<span class="citation" data-cites="doe">(Doe and Roe 2019)</span>`,
		},
		{
			name:  "et al",
			input: "@team",
			want:  `<span class="citation" data-cites="team">A et al. (2021)</span>`,
		},
		{
			name:  "entry without author or year degrades to title",
			input: "[@untitled] @untitled",
			want: `<span class="citation" data-cites="untitled">(Only a Title)</span> ` +
				`<span class="citation" data-cites="untitled">Only a Title</span>`,
		},
		{
			name:  "missing entry renders visible fallback",
			input: "[@missing] and @missing",
			want: `<span class="citation missing" data-cites="missing">(missing?)</span> and ` +
				`<span class="citation missing" data-cites="missing">missing?</span>`,
		},
		{
			name:  "mmark reference",
			input: "[@RFC2119]",
			want:  `<span class="citation missing" data-cites="RFC2119">[RFC2119]</span>`,
		},
		{
			name:  "mmd citation",
			input: "[p. 9][#smith2020]",
			want:  `<span class="citation" data-cites="smith2020">(Smith 2020, p. 9)</span>`,
		},
		{
			name:  "link citations",
			input: "[@smith2020] [@missing]",
			opts:  RenderOptions{LinkCitations: true},
			want: `<a href="#ref-smith2020" class="citation" data-cites="smith2020">(Smith 2020)</a> ` +
				`<span class="citation missing" data-cites="missing">(missing?)</span>`,
		},
		{
			name:  "tooltips",
			input: "[@smith2020]",
			opts:  RenderOptions{ShowTooltips: true},
			want:  `<span class="citation" data-cites="smith2020" title="Smith, Jane. (2020). A Study.">(Smith 2020)</span>`,
		},
		{
			name:  "numeric style",
			input: "@smith2020 [@smith2020, p. 3] [-@doe]",
			opts:  RenderOptions{Style: StyleNumeric},
			want: `<span class="citation" data-cites="smith2020">Smith [1]</span> ` +
				`<span class="citation" data-cites="smith2020">[1, p. 3]</span> ` +
				`<span class="citation" data-cites="doe">[2]</span>`,
		},
		{
			name:  "two-key group shares one pair of parentheses",
			input: "[@smith2020; @doe]",
			want: `(<span class="citation" data-cites="smith2020">Smith 2020</span>; ` +
				`<span class="citation" data-cites="doe">Doe and Roe 2019</span>)`,
		},
		{
			name:  "three-key group with prefix, locator and suppressed author",
			input: "[see @smith2020, p. 2; -@doe; @team, chap. 3]",
			want: `(<span class="citation" data-cites="smith2020">see Smith 2020, p. 2</span>; ` +
				`<span class="citation" data-cites="doe">2019</span>; ` +
				`<span class="citation" data-cites="team">A et al. 2021, chap. 3</span>)`,
		},
		{
			name:  "group with a missing key",
			input: "[@smith2020; @missing]",
			want: `(<span class="citation" data-cites="smith2020">Smith 2020</span>; ` +
				`<span class="citation missing" data-cites="missing">missing?</span>)`,
		},
		{
			name:  "numeric group",
			input: "[@smith2020; @doe, p. 4]",
			opts:  RenderOptions{Style: StyleNumeric},
			want: `[<span class="citation" data-cites="smith2020">1</span>; ` +
				`<span class="citation" data-cites="doe">2, p. 4</span>]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			text, reg := parseWithBibliography(t, tt.input)
			got := Render(text, reg, tt.opts)
			if got != tt.want {
				t.Errorf("Render() =\n%s\nwant\n%s", got, tt.want)
			}
			if strings.Contains(got, placeholderOpen) {
				t.Errorf("placeholder survived: %q", got)
			}
		})
	}
}

func TestRender_PlaceholdersWrappedByMarkdown(t *testing.T) {
	t.Parallel()

	text, reg := parseWithBibliography(t, "Intro @smith2020.\n\nLater [@smith2020, p. 7].")
	html := "<p>" + strings.ReplaceAll(text, "\n\n", "</p>\n<p>") + "</p>"

	got := Render(html, reg, RenderOptions{})
	want := `<p>Intro <span class="citation" data-cites="smith2020">Smith (2020)</span>.</p>` + "\n" +
		`<p>Later <span class="citation" data-cites="smith2020">(Smith 2020, p. 7)</span>.</p>`
	if got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}
}

func TestRender_UnknownPlaceholderAndNilRegistry(t *testing.T) {
	t.Parallel()

	got := Render("x "+Placeholder("ghost")+" y", nil, RenderOptions{})
	want := `x <span class="citation missing" data-cites="ghost">(ghost?)</span> y`
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRender_LogsMissingEntries(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	text, reg := parseWithBibliography(t, "[@missing] [@RFC1234]")
	Render(text, reg, RenderOptions{Logger: logger})

	out := buf.String()
	if !strings.Contains(out, "key=missing") {
		t.Errorf("expected warning for missing key, got %q", out)
	}
	if strings.Contains(out, "RFC1234") {
		t.Errorf("mmark references should not be reported, got %q", out)
	}
}

func TestParseStyle(t *testing.T) {
	t.Parallel()

	tests := map[string]Style{
		"numeric":     StyleNumeric,
		" Label ":     StyleNumeric,
		"author-date": StyleAuthorDate,
		"note":        StyleAuthorDate,
		"":            StyleAuthorDate,
	}
	for in, want := range tests {
		if got := ParseStyle(in); got != want {
			t.Errorf("ParseStyle(%q) = %v, want %v", in, got, want)
		}
	}
}
