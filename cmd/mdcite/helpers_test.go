package main

// Notes:
// - Test infrastructure shared by the command tests: an Environment with
//   captured output, a fixed clock and an isolated cache, plus fixtures.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// testBib holds two entries used across command tests.
const testBib = `@article{smith2020,
  author  = {Smith, John},
  title   = {A Study of Things},
  journal = {Journal of Stuff},
  year    = {2020}
}

@book{doe2019,
  author    = {Doe, Jane and Roe, Richard},
  title     = {Collected Works},
  publisher = {Acme Press},
  year      = {2019}
}
`

// testEnvironment returns an Environment writing to buffers, reading a
// fixed clock and caching bibliographies under t.TempDir().
func testEnvironment(t *testing.T, extraEnv ...string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	environ := append([]string{"MDCITE_CACHE=" + filepath.Join(t.TempDir(), "cache.db")}, extraEnv...)
	env := &Environment{
		Now:     func() time.Time { return time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC) },
		Stdout:  stdout,
		Stderr:  stderr,
		Environ: func() []string { return environ },
	}
	return env, stdout, stderr
}

// writeFile creates dir/name with content, creating parent directories.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// readFile returns the content of path or fails the test.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) // #nosec G304 -- test path
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}
