package yamlutil_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-mdcite/internal/yamlutil"
)

type testConfig struct {
	Name    string `yaml:"name"`
	Count   int    `yaml:"count"`
	Enabled bool   `yaml:"enabled"`
}

// ---------------------------------------------------------------------------
// TestUnmarshal - Parses YAML into Go structs
// ---------------------------------------------------------------------------

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
	}{
		{
			name: "valid YAML",
			data: []byte("name: test\ncount: 42\nenabled: true"),
			dest: &testConfig{},
		},
		{
			name:    "nil data",
			data:    nil,
			dest:    &testConfig{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "nil destination",
			data:    []byte("name: test"),
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Unmarshal(tt.data, tt.dest)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			cfg := tt.dest.(*testConfig)
			if cfg.Name != "test" || cfg.Count != 42 || !cfg.Enabled {
				t.Errorf("decoded = %+v, want {test 42 true}", *cfg)
			}
		})
	}
}

func TestUnmarshalStrict_UnknownField(t *testing.T) {
	t.Parallel()

	err := yamlutil.UnmarshalStrict([]byte("name: test\nunknown_field: value"), &testConfig{})
	if err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
	if !strings.HasPrefix(err.Error(), "yamlutil:") {
		t.Errorf("error = %q, want prefix 'yamlutil:'", err)
	}
}

func TestUnmarshalWithLimit(t *testing.T) {
	t.Parallel()

	data := []byte("name: limited")

	var cfg testConfig
	if err := yamlutil.UnmarshalWithLimit(data, &cfg, len(data)); err != nil {
		t.Fatalf("input at limit: unexpected error: %v", err)
	}
	if cfg.Name != "limited" {
		t.Errorf("Name = %q, want %q", cfg.Name, "limited")
	}

	err := yamlutil.UnmarshalWithLimit(data, &cfg, len(data)-1)
	if !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("errors.Is(err, ErrInputTooLarge) = false, got: %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestUnmarshalOrdered - Keeps mapping order for metadata flattening
// ---------------------------------------------------------------------------

func TestUnmarshalOrdered(t *testing.T) {
	t.Parallel()

	data := []byte("zeta: 1\nalpha:\n  family: Smith\n  given: Jane\ntags:\n  - a\n  - b\n")

	got, err := yamlutil.UnmarshalOrdered(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pairs, ok := got.([]yamlutil.Pair)
	if !ok {
		t.Fatalf("result type = %T, want []yamlutil.Pair", got)
	}

	var keys []string
	for _, p := range pairs {
		keys = append(keys, p.Key)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "tags"}, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	nested, ok := pairs[1].Value.([]yamlutil.Pair)
	if !ok {
		t.Fatalf("nested type = %T, want []yamlutil.Pair", pairs[1].Value)
	}
	if nested[0].Key != "family" || nested[0].Value != "Smith" {
		t.Errorf("nested[0] = %+v, want family: Smith", nested[0])
	}

	seq, ok := pairs[2].Value.([]any)
	if !ok || len(seq) != 2 {
		t.Fatalf("tags = %#v, want two-element sequence", pairs[2].Value)
	}
}

func TestUnmarshalOrdered_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := yamlutil.UnmarshalOrdered(nil); !errors.Is(err, yamlutil.ErrNilData) {
		t.Errorf("nil data: error = %v, want ErrNilData", err)
	}
	if _, err := yamlutil.UnmarshalOrdered([]byte("invalid: [unclosed")); err == nil {
		t.Error("invalid YAML: expected error, got nil")
	}
}

// ---------------------------------------------------------------------------
// TestUnmarshalOrderedText - Scalars keep their source text
// ---------------------------------------------------------------------------

func TestUnmarshalOrderedText(t *testing.T) {
	t.Parallel()

	data := []byte("version: 1.10\nid: 007\nempty:\nbase: &b 2.50\ncopy: *b\nlist: [1.0, 'x']\nnested:\n  flag: true\n")

	got, err := yamlutil.UnmarshalOrderedText(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []yamlutil.Pair{
		{Key: "version", Value: "1.10"},
		{Key: "id", Value: "007"},
		{Key: "empty", Value: ""},
		{Key: "base", Value: "2.50"},
		{Key: "copy", Value: "2.50"},
		{Key: "list", Value: []any{"1.0", "x"}},
		{Key: "nested", Value: []yamlutil.Pair{{Key: "flag", Value: "true"}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("UnmarshalOrderedText() mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalOrderedText_Errors(t *testing.T) {
	t.Parallel()

	if _, err := yamlutil.UnmarshalOrderedText(nil); !errors.Is(err, yamlutil.ErrNilData) {
		t.Errorf("nil data: error = %v, want ErrNilData", err)
	}
	if _, err := yamlutil.UnmarshalOrderedText([]byte("invalid: [unclosed")); err == nil {
		t.Error("invalid YAML: expected error, got nil")
	}
	merge := []byte("base: &b\n  a: 1\nchild:\n  <<: *b\n")
	if _, err := yamlutil.UnmarshalOrderedText(merge); !errors.Is(err, yamlutil.ErrUnsupported) {
		t.Errorf("merge key: error = %v, want ErrUnsupported", err)
	}
}

func TestMarshalOrdered(t *testing.T) {
	t.Parallel()

	data, err := yamlutil.MarshalOrdered([]yamlutil.Pair{
		{Key: "title", Value: "Hello"},
		{Key: "author", Value: "A, B"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := string(data)
	titleIdx := strings.Index(s, "title:")
	authorIdx := strings.Index(s, "author:")
	if titleIdx == -1 || authorIdx == -1 || titleIdx > authorIdx {
		t.Errorf("output does not preserve order, got:\n%s", s)
	}

	var decoded map[string]string
	if err := yamlutil.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("re-decoding output: %v", err)
	}
	if decoded["author"] != "A, B" {
		t.Errorf("author = %q, want %q", decoded["author"], "A, B")
	}
}
