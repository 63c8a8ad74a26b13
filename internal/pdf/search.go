package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	jerrors "github.com/a3tai/jorf-reader/internal/errors"
)

// FileInfo describes a gazette PDF found in the JOs folder
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Search discovers gazette PDFs in a folder
type Search struct {
	validator *Validator
}

// NewSearch creates a new PDF search handler with the specified constraints
func NewSearch(maxFileSize int64) *Search {
	return &Search{
		validator: NewValidator(maxFileSize),
	}
}

// FindPDFs lists the PDF files directly inside directory, sorted by name.
// Subdirectories are not scanned. Files that fail the quick checks are
// returned in skipped.
func (s *Search) FindPDFs(directory string) (files []FileInfo, skipped []error, err error) {
	if directory == "" {
		return nil, nil, jerrors.New(jerrors.ErrorTypeInvalidPath, "directory cannot be empty")
	}

	info, err := os.Stat(directory)
	if err != nil {
		return nil, nil, jerrors.Wrap(jerrors.ErrorTypeInvalidPath, "directory does not exist", err).WithFile(directory)
	}
	if !info.IsDir() {
		return nil, nil, jerrors.New(jerrors.ErrorTypeInvalidPath, "path is not a directory").WithFile(directory)
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, nil, fmt.Errorf("reading directory %s: %w", directory, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !IsPDFName(entry.Name()) {
			continue
		}
		path := filepath.Join(directory, entry.Name())

		withinDir, err := isPathWithinDirectory(path, directory)
		if err != nil || !withinDir {
			skipped = append(skipped, jerrors.New(jerrors.ErrorTypeInvalidPath, "file resolves outside the folder").WithFile(path))
			continue
		}

		fi, err := os.Stat(path)
		if err != nil {
			skipped = append(skipped, jerrors.Wrap(jerrors.ErrorTypeInvalidPath, "cannot access file", err).WithFile(path))
			continue
		}
		if err := s.validator.ValidateFileInfo(path, fi); err != nil {
			skipped = append(skipped, err)
			continue
		}

		files = append(files, FileInfo{
			Path:         path,
			Name:         fi.Name(),
			Size:         fi.Size(),
			ModifiedTime: fi.ModTime().Format("2006-01-02 15:04:05"),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, skipped, nil
}

// isPathWithinDirectory checks if a path, after resolving symlinks, is within directory
func isPathWithinDirectory(path, directory string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}

	absDir, err := filepath.Abs(directory)
	if err != nil {
		return false, fmt.Errorf("failed to resolve directory: %w", err)
	}

	realPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return false, fmt.Errorf("failed to evaluate symlinks: %w", err)
		}
		realPath = absPath
	}

	realDir, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate directory symlinks: %w", err)
	}

	realPath = filepath.Clean(realPath)
	realDir = filepath.Clean(realDir)
	if !strings.HasSuffix(realDir, string(filepath.Separator)) {
		realDir += string(filepath.Separator)
	}

	return strings.HasPrefix(realPath, realDir), nil
}
