package bibliography

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseCSLJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    []*Entry
		wantErr error
	}{
		{
			name: "array of items",
			input: `[
  {
    "id": "smith2020",
    "type": "article-journal",
    "title": "A Study",
    "author": [{"family": "Smith", "given": "Jane"}, {"family": "Doe"}],
    "issued": {"date-parts": [[2020, 5]]},
    "container-title": "Journal of Tests",
    "volume": 4,
    "page": "1-10",
    "DOI": "10.1/abc"
  },
  {"id": "org", "author": [{"literal": "ACME Corp"}], "issued": {"raw": "circa 1999"}},
  {"title": "no id is skipped"}
]`,
			want: []*Entry{
				{
					ID: "smith2020", Type: "article-journal", Title: "A Study",
					Author: "Smith, Jane and Doe", Year: "2020",
					ContainerTitle: "Journal of Tests", Volume: "4", Page: "1-10", DOI: "10.1/abc",
				},
				{ID: "org", Author: "ACME Corp", Year: "1999"},
			},
		},
		{
			name:  "object with references",
			input: `{"references": [{"id": "x", "title": "X", "editor": [{"family": "Ed", "given": "A."}]}]}`,
			want:  []*Entry{{ID: "x", Title: "X", Author: "Ed, A."}},
		},
		{
			name:  "empty array",
			input: `[]`,
			want:  []*Entry{},
		},
		{
			name:    "malformed",
			input:   `[{"id": "x",`,
			wantErr: ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseCSLJSON([]byte(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseCSLJSON() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseCSLYAML(t *testing.T) {
	t.Parallel()

	input := `---
references:
- id: smith2020
  type: article-journal
  title: A Study
  author:
  - family: Smith
    given: Jane
  issued:
    date-parts:
    - [2020]
  container-title: Journal of Tests
- id: doe2019
  type: book
  title: "Quoted: Title"
  author:
    - family: Doe
  issued: 2019
  publisher: Press
...
`
	want := []*Entry{
		{
			ID: "smith2020", Type: "article-journal", Title: "A Study",
			Author: "Smith, Jane", Year: "2020", ContainerTitle: "Journal of Tests",
		},
		{ID: "doe2019", Type: "book", Title: "Quoted: Title", Author: "Doe", Year: "2019", Publisher: "Press"},
	}

	if diff := cmp.Diff(want, ParseCSLYAML([]byte(input))); diff != "" {
		t.Errorf("ParseCSLYAML() mismatch (-want +got):\n%s", diff)
	}
}

func TestScanCSLYAML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []*Entry
	}{
		{
			name: "nested blocks at entry indentation",
			input: `references:
  - id: a1
    title: A Study: Part 2
    author:
      - family: Smith
        given: J.
      - family: Doe
        given: R.
    issued:
      date-parts:
        - - 2021
          - 3
    page: 5-9
  - id: a2
    year: 2018
    author: [{family: Lee, given: K.}, {literal: ACME}]
`,
			want: []*Entry{
				{ID: "a1", Title: "A Study: Part 2", Author: "Smith, J. and Doe, R.", Year: "2021", Page: "5-9"},
				{ID: "a2", Author: "Lee, K. and ACME", Year: "2018"},
			},
		},
		{
			name: "top level list with sequence at key indentation",
			input: `- id: b1
  author:
  - family: Roe
  editor:
  - family: Ignored
  issued: {date-parts: [[2005]]}
  URL: https://example.org/b1
- id: b2
  author: Plain Text Author
`,
			want: []*Entry{
				{ID: "b1", Author: "Roe", Year: "2005", URL: "https://example.org/b1"},
				{ID: "b2", Author: "Plain Text Author"},
			},
		},
		{
			name: "editor used when author is missing",
			input: `- id: c1
  editor:
    - family: Ed
`,
			want: []*Entry{{ID: "c1", Author: "Ed"}},
		},
		{
			name:  "entry without id is dropped",
			input: "- title: Orphan\n",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tt.want, scanCSLYAML(tt.input)); diff != "" {
				t.Errorf("scanCSLYAML() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
