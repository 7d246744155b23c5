package fileutil_test

// Notes:
// - WriteFileAtomic write/close error branches are not tested because
//   triggering disk write failures is platform-specific.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alnah/go-mdcite/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestReadFileLimited - Bounded whole-file reads
// ---------------------------------------------------------------------------

func TestReadFileLimited(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	small := filepath.Join(dir, "small.bib")
	if err := os.WriteFile(small, []byte("0123456789"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		max     int64
		want    string
		wantErr error
	}{
		{
			name: "file under limit",
			path: small,
			max:  100,
			want: "0123456789",
		},
		{
			name: "file exactly at limit",
			path: small,
			max:  10,
			want: "0123456789",
		},
		{
			name:    "file over limit",
			path:    small,
			max:     9,
			wantErr: fileutil.ErrFileTooLarge,
		},
		{
			name:    "missing file",
			path:    filepath.Join(dir, "missing.bib"),
			max:     100,
			wantErr: os.ErrNotExist,
		},
		{
			name:    "directory",
			path:    dir,
			max:     100,
			wantErr: fileutil.ErrNotRegular,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := fileutil.ReadFileLimited(tt.path, tt.max)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReadFileLimited() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ReadFileLimited() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.html")

	if err := fileutil.WriteFileAtomic(path, []byte("first"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := fileutil.WriteFileAtomic(path, []byte("second"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q, want %q", got, "second")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1 (temp file leaked)", len(entries))
	}
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "out.html")
	if err := fileutil.WriteFileAtomic(path, []byte("x"), 0o644); err == nil {
		t.Error("expected error for missing directory, got nil")
	}
}

func TestResolvePath(t *testing.T) {
	t.Parallel()

	abs := filepath.Join(t.TempDir(), "refs.bib")

	tests := []struct {
		name    string
		baseDir string
		path    string
		want    string
	}{
		{"relative joined onto base", "/docs", "refs.bib", filepath.Join("/docs", "refs.bib")},
		{"empty base leaves path", "", "refs.bib", "refs.bib"},
		{"absolute path unchanged", "/docs", abs, abs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.ResolvePath(tt.baseDir, tt.path); got != tt.want {
				t.Errorf("ResolvePath(%q, %q) = %q, want %q", tt.baseDir, tt.path, got, tt.want)
			}
		})
	}
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "a.md")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	if !fileutil.FileExists(file) {
		t.Errorf("FileExists(%q) = false, want true", file)
	}
	if fileutil.FileExists(dir) {
		t.Errorf("FileExists(dir) = true, want false")
	}
	if fileutil.FileExists(filepath.Join(dir, "nope")) {
		t.Errorf("FileExists(missing) = true, want false")
	}
}

func TestIsFilePathAndURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		wantPath bool
		wantURL  bool
	}{
		{"default", false, false},
		{"./refs.bib", true, false},
		{"C:\\refs.bib", true, false},
		{"https://example.com/a", true, true},
		{"http://example.com", true, true},
		{"ftp.example.com", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.IsFilePath(tt.in); got != tt.wantPath {
				t.Errorf("IsFilePath(%q) = %v, want %v", tt.in, got, tt.wantPath)
			}
			if got := fileutil.IsURL(tt.in); got != tt.wantURL {
				t.Errorf("IsURL(%q) = %v, want %v", tt.in, got, tt.wantURL)
			}
		})
	}
}
