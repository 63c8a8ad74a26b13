package pdf

import (
	"os"
	"path/filepath"
	"testing"

	jerrors "github.com/a3tai/jorf-reader/internal/errors"
)

func TestSearch_FindPDFs(t *testing.T) {
	tempDir := t.TempDir()

	files := map[string][]byte{
		"joe_20200402.pdf": []byte("%PDF-1.4 b"),
		"joe_20200315.pdf": []byte("%PDF-1.4 a"),
		"readme.txt":       []byte("not a pdf"),
		"empty.pdf":        nil,
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(tempDir, name), data, 0o644); err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
	}
	nested := filepath.Join(tempDir, "archive")
	if err := os.Mkdir(nested, 0o755); err != nil {
		t.Fatalf("Failed to create subdirectory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(nested, "joe_20190101.pdf"), []byte("%PDF-1.4 c"), 0o644); err != nil {
		t.Fatalf("Failed to create nested pdf: %v", err)
	}

	found, skipped, err := NewSearch(1024).FindPDFs(tempDir)
	if err != nil {
		t.Fatalf("FindPDFs() unexpected error = %v", err)
	}

	if len(found) != 2 {
		t.Fatalf("FindPDFs() found %d files, want 2: %+v", len(found), found)
	}
	if found[0].Name != "joe_20200315.pdf" || found[1].Name != "joe_20200402.pdf" {
		t.Errorf("FindPDFs() order = %s, %s; want sorted by name", found[0].Name, found[1].Name)
	}
	if found[0].Path != filepath.Join(tempDir, "joe_20200315.pdf") {
		t.Errorf("FindPDFs() path = %s", found[0].Path)
	}
	if len(skipped) != 1 {
		t.Errorf("FindPDFs() skipped %d files, want 1 (the empty pdf)", len(skipped))
	}
}

func TestSearch_FindPDFsErrors(t *testing.T) {
	s := NewSearch(1024)

	if _, _, err := s.FindPDFs(""); !jerrors.IsType(err, jerrors.ErrorTypeInvalidPath) {
		t.Errorf("FindPDFs(\"\") error = %v, want InvalidPath", err)
	}
	if _, _, err := s.FindPDFs("/non/existent/dir"); !jerrors.IsType(err, jerrors.ErrorTypeInvalidPath) {
		t.Errorf("FindPDFs(missing) error = %v, want InvalidPath", err)
	}

	file := filepath.Join(t.TempDir(), "a.pdf")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	if _, _, err := s.FindPDFs(file); !jerrors.IsType(err, jerrors.ErrorTypeInvalidPath) {
		t.Errorf("FindPDFs(file) error = %v, want InvalidPath", err)
	}
}
