package metadata

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		wantItems  List
		wantRest   string
		wantFormat Format
	}{
		{
			name:       "no metadata returns input unchanged",
			input:      "Just a paragraph of prose.\n\nAnother one.",
			wantRest:   "Just a paragraph of prose.\n\nAnother one.",
			wantFormat: FormatNone,
		},
		{
			name:       "empty input",
			input:      "",
			wantRest:   "",
			wantFormat: FormatNone,
		},
		// YAML
		{
			name:  "yaml front matter with quoted value",
			input: "---\ntitle: Hello\nauthor: \"A, B\"\n---\nBody",
			wantItems: List{
				{Key: "title", Value: "Hello"},
				{Key: "author", Value: "A, B"},
			},
			wantRest:   "Body",
			wantFormat: FormatYAML,
		},
		{
			name:       "yaml closed by dots",
			input:      "---\ntitle: 'Single'\n...\nBody",
			wantItems:  List{{Key: "title", Value: "Single"}},
			wantRest:   "Body",
			wantFormat: FormatYAML,
		},
		{
			name:       "yaml with CRLF line endings",
			input:      "---\r\ntitle: Hello\r\n---\r\nBody",
			wantItems:  List{{Key: "title", Value: "Hello"}},
			wantRest:   "Body",
			wantFormat: FormatYAML,
		},
		{
			name:       "yaml value with colon stays verbatim",
			input:      "---\ntitle: Part 1: The Start\nversion: 1.0\n---\n",
			wantItems:  List{{Key: "title", Value: "Part 1: The Start"}, {Key: "version", Value: "1.0"}},
			wantRest:   "",
			wantFormat: FormatYAML,
		},
		{
			name:  "yaml nested structure is flattened",
			input: "---\ntitle: T\nauthor:\n  family: Smith\n  given: Jane\ntags: [a, b]\n---\nBody",
			wantItems: List{
				{Key: "title", Value: "T"},
				{Key: "author.family", Value: "Smith"},
				{Key: "author.given", Value: "Jane"},
				{Key: "tags", Value: "a, b"},
			},
			wantRest:   "Body",
			wantFormat: FormatYAML,
		},
		{
			name:  "yaml scalars beside nested values keep their text",
			input: "---\nversion: 1.10\nid: 007\ndraft: yes\ntags: [a, 01]\nauthor:\n  zip: 02134\n---\nBody",
			wantItems: List{
				{Key: "version", Value: "1.10"},
				{Key: "id", Value: "007"},
				{Key: "draft", Value: "yes"},
				{Key: "tags", Value: "a, 01"},
				{Key: "author.zip", Value: "02134"},
			},
			wantRest:   "Body",
			wantFormat: FormatYAML,
		},
		{
			name:  "yaml sequence of mappings is indexed",
			input: "---\nauthor:\n  - family: Smith\n  - family: Doe\n---\n",
			wantItems: List{
				{Key: "author.0.family", Value: "Smith"},
				{Key: "author.1.family", Value: "Doe"},
			},
			wantRest:   "",
			wantFormat: FormatYAML,
		},
		{
			name:       "unclosed yaml is not metadata",
			input:      "---\ntitle: x\nno closing fence",
			wantRest:   "---\ntitle: x\nno closing fence",
			wantFormat: FormatNone,
		},
		{
			name:       "empty yaml block consumes fences",
			input:      "---\n---\nBody",
			wantRest:   "Body",
			wantFormat: FormatYAML,
		},
		// Pandoc
		{
			name:  "pandoc title block",
			input: "% My Title\n% Jane Doe\n% 2024-01-01\n\nBody",
			wantItems: List{
				{Key: "title", Value: "My Title"},
				{Key: "author", Value: "Jane Doe"},
				{Key: "date", Value: "2024-01-01"},
			},
			wantRest:   "\nBody",
			wantFormat: FormatPandoc,
		},
		{
			name:  "pandoc empty author line keeps position",
			input: "% Title\n%\n% 2020\nText",
			wantItems: List{
				{Key: "title", Value: "Title"},
				{Key: "date", Value: "2020"},
			},
			wantRest:   "Text",
			wantFormat: FormatPandoc,
		},
		{
			name:  "pandoc reads at most three lines",
			input: "%a\n%b\n%c\n%d\n",
			wantItems: List{
				{Key: "title", Value: "a"},
				{Key: "author", Value: "b"},
				{Key: "date", Value: "c"},
			},
			wantRest:   "%d\n",
			wantFormat: FormatPandoc,
		},
		{
			name:       "pandoc block ends at first non-percent line",
			input:      "% Only Title\nBody text",
			wantItems:  List{{Key: "title", Value: "Only Title"}},
			wantRest:   "Body text",
			wantFormat: FormatPandoc,
		},
		// MultiMarkdown
		{
			name:  "mmd metadata ended by blank line",
			input: "Title: Hello\nAuthor: Jane\n\nBody",
			wantItems: List{
				{Key: "Title", Value: "Hello"},
				{Key: "Author", Value: "Jane"},
			},
			wantRest:   "Body",
			wantFormat: FormatMMD,
		},
		{
			name:       "mmd leading blank lines skipped",
			input:      "\n\nTitle: Hello\n\nBody",
			wantItems:  List{{Key: "Title", Value: "Hello"}},
			wantRest:   "Body",
			wantFormat: FormatMMD,
		},
		{
			name:       "mmd url line is not metadata",
			input:      "Visit: http://example.com\n\nBody",
			wantRest:   "Visit: http://example.com\n\nBody",
			wantFormat: FormatNone,
		},
		{
			name:       "mmd heading first aborts",
			input:      "# Heading\nTitle: x\n",
			wantRest:   "# Heading\nTitle: x\n",
			wantFormat: FormatNone,
		},
		{
			name:       "mmd list item first aborts",
			input:      "- item: one\n",
			wantRest:   "- item: one\n",
			wantFormat: FormatNone,
		},
		{
			name:       "mmd kramdown marker first aborts",
			input:      "{: .class}\n",
			wantRest:   "{: .class}\n",
			wantFormat: FormatNone,
		},
		{
			name:       "mmd html before colon aborts",
			input:      "<b>Note</b>: careful\n",
			wantRest:   "<b>Note</b>: careful\n",
			wantFormat: FormatNone,
		},
		{
			name:       "mmd colon without space is not metadata",
			input:      "time:12\n",
			wantRest:   "time:12\n",
			wantFormat: FormatNone,
		},
		{
			name:       "mmd heading after metadata ends block",
			input:      "Title: Doc\n# Heading\ntext",
			wantItems:  List{{Key: "Title", Value: "Doc"}},
			wantRest:   "# Heading\ntext",
			wantFormat: FormatMMD,
		},
		{
			name:       "mmd list after metadata ends block",
			input:      "Title: Doc\n1. first\n",
			wantItems:  List{{Key: "Title", Value: "Doc"}},
			wantRest:   "1. first\n",
			wantFormat: FormatMMD,
		},
		{
			name:  "mmd indented continuation joins value",
			input: "Title: A long\n    title here\nAuthor: Me\n\nBody",
			wantItems: List{
				{Key: "Title", Value: "A long title here"},
				{Key: "Author", Value: "Me"},
			},
			wantRest:   "Body",
			wantFormat: FormatMMD,
		},
		{
			name:       "mmd metadata at end of input",
			input:      "Title: Only",
			wantItems:  List{{Key: "Title", Value: "Only"}},
			wantRest:   "",
			wantFormat: FormatMMD,
		},
		{
			name:  "mmd key with spaces",
			input: "HTML Header Level: 2\n\n",
			wantItems: List{
				{Key: "HTML Header Level", Value: "2"},
			},
			wantRest:   "",
			wantFormat: FormatMMD,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			items, rest, format := ExtractFormat(tt.input)
			if diff := cmp.Diff(tt.wantItems, items); diff != "" {
				t.Errorf("items mismatch (-want +got):\n%s", diff)
			}
			if rest != tt.wantRest {
				t.Errorf("rest = %q, want %q", rest, tt.wantRest)
			}
			if format != tt.wantFormat {
				t.Errorf("format = %v, want %v", format, tt.wantFormat)
			}
		})
	}
}

func TestExtract_ByteIdenticalWithoutMetadata(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"# Title\n\nParagraph",
		"Some *emphasis* here.\n",
		"---- not a fence\ntext",
		"<!-- comment: here -->\n",
	}
	for _, in := range inputs {
		items, rest := Extract(in)
		if len(items) != 0 {
			t.Errorf("Extract(%q) items = %v, want none", in, items)
		}
		if rest != in {
			t.Errorf("Extract(%q) rest = %q, want input unchanged", in, rest)
		}
	}
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    List
	}{
		{
			name:    "bare yaml",
			content: "title: From File\nlang: en\n",
			want:    List{{Key: "title", Value: "From File"}, {Key: "lang", Value: "en"}},
		},
		{
			name:    "fenced front matter",
			content: "---\nauthor: Jane\n---\n",
			want:    List{{Key: "author", Value: "Jane"}},
		},
		{
			name:    "empty file",
			content: "",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tt.want, ParseFile(tt.content)); diff != "" {
				t.Errorf("ParseFile() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
