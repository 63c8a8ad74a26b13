package pdf

import (
	"os"
	"path/filepath"
	"testing"

	jerrors "github.com/a3tai/jorf-reader/internal/errors"
)

func TestValidator_Validate(t *testing.T) {
	tempDir := t.TempDir()
	validator := NewValidator(1024 * 1024)

	emptyPath := filepath.Join(tempDir, "empty.pdf")
	if err := os.WriteFile(emptyPath, nil, 0o644); err != nil {
		t.Fatalf("Failed to create empty file: %v", err)
	}
	validPath := writeTestPDF(t, tempDir, "valid.pdf", [][]string{{"page one"}, {"page two"}, {"page three"}})

	tests := []struct {
		name    string
		path    string
		errType jerrors.ErrorType
		pages   int
	}{
		{name: "empty path", path: "", errType: jerrors.ErrorTypeInvalidPath},
		{name: "non-existent file", path: "/non/existent/file.pdf", errType: jerrors.ErrorTypeInvalidPath},
		{name: "empty file", path: emptyPath, errType: jerrors.ErrorTypeInvalidPDF},
		{name: "valid file", path: validPath, pages: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages, err := validator.Validate(tt.path)
			if tt.pages > 0 {
				if err != nil {
					t.Fatalf("Validate() unexpected error = %v", err)
				}
				if pages != tt.pages {
					t.Errorf("Validate() pages = %d, want %d", pages, tt.pages)
				}
				if !validator.IsValidPDF(tt.path) {
					t.Errorf("IsValidPDF() = false, want true")
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error but got none")
			}
			if !jerrors.IsType(err, tt.errType) {
				t.Errorf("Validate() error = %v, want type %v", err, tt.errType)
			}
			if validator.IsValidPDF(tt.path) {
				t.Errorf("IsValidPDF() = true, want false")
			}
		})
	}
}

func TestIsPDFName(t *testing.T) {
	tests := map[string]bool{
		"joe_20200315.pdf": true,
		"JOE_20200315.PDF": true,
		"notes.txt":        false,
		"pdf":              false,
	}
	for name, want := range tests {
		if got := IsPDFName(name); got != want {
			t.Errorf("IsPDFName(%q) = %v, want %v", name, got, want)
		}
	}
}
