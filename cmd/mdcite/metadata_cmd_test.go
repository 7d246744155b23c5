package main

// Notes:
// - runMetadata: we test source precedence (config < metadata file <
//   document < --meta), date resolution with the injected clock and the
//   --body output. Front matter quoting is covered by internal/metadata.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunMetadata - Merged metadata output
// ---------------------------------------------------------------------------

func TestRunMetadata(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "mdcite.yaml", "metadata:\n  publisher: Config Press\n  author: Config Author\n")
	writeFile(t, dir, "meta.txt", "author: File Author\nlicense: CC-BY\n")
	in := writeFile(t, dir, "doc.md", "---\nauthor: Doc Author\ntitle: Draft\ndate: auto\n---\nBy [%author] ([%license]).\n")

	env, stdout, stderr := testEnvironment(t)
	err := runMetadata(context.Background(), []string{
		in, "-c", cfgPath, "--metadata-file", filepath.Join(dir, "meta.txt"), "--meta", "title=Final", "--body",
	}, env)
	if err != nil {
		t.Fatalf("runMetadata() unexpected error: %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	if !strings.HasPrefix(out, "---\n") {
		t.Errorf("output does not start with front matter:\n%s", out)
	}
	for _, want := range []string{
		"publisher: Config Press\n",
		"author: Doc Author\n",
		"license: CC-BY\n",
		"title: Final\n",
		"2024-03-05",
		"By Doc Author (CC-BY).\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	for _, notWant := range []string{"Config Author", "File Author", "Draft"} {
		if strings.Contains(out, notWant) {
			t.Errorf("output should not contain overridden %q:\n%s", notWant, out)
		}
	}
}

func TestRunMetadata_NoMetadata(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "plain.md", "Just text.\n")

	env, stdout, _ := testEnvironment(t)
	if err := runMetadata(context.Background(), []string{in}, env); err != nil {
		t.Fatalf("runMetadata() unexpected error: %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", stdout.String())
	}
}

func TestRunMetadata_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "no input", args: nil, wantErr: ErrNoInput},
		{name: "missing file", args: []string{filepath.Join(dir, "ghost.md")}, wantErr: ErrReadMarkdown},
		{name: "bad flag", args: []string{"--nope"}, wantErr: ErrUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env, _, _ := testEnvironment(t)
			err := runMetadata(context.Background(), tt.args, env)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("runMetadata() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
