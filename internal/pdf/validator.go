package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	jerrors "github.com/a3tai/jorf-reader/internal/errors"
)

// Validator handles PDF file validation operations
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// Validate checks the file and parses its structure with pdfcpu in relaxed
// mode. It returns the page count.
func (v *Validator) Validate(filePath string) (int, error) {
	if filePath == "" {
		return 0, jerrors.New(jerrors.ErrorTypeInvalidPath, "path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return 0, jerrors.New(jerrors.ErrorTypeInvalidPath, "file does not exist").WithFile(filePath)
	}
	if err != nil {
		return 0, jerrors.Wrap(jerrors.ErrorTypeInvalidPath, "cannot access file", err).WithFile(filePath)
	}

	if err := v.ValidateFileInfo(filePath, fileInfo); err != nil {
		return 0, err
	}

	f, err := os.Open(filePath)
	if err != nil {
		return 0, jerrors.Wrap(jerrors.ErrorTypeInvalidPath, "cannot open file", err).WithFile(filePath)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return 0, jerrors.Wrap(jerrors.ErrorTypeInvalidPDF, "failed to read PDF structure", err).WithFile(filePath)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, jerrors.Wrap(jerrors.ErrorTypeInvalidPDF, "failed to count pages", err).WithFile(filePath)
	}
	if ctx.PageCount < 1 {
		return 0, jerrors.New(jerrors.ErrorTypeInvalidPDF, "document has no pages").WithFile(filePath)
	}

	return ctx.PageCount, nil
}

// IsValidPDF performs a quick check to see if a file is a valid PDF
func (v *Validator) IsValidPDF(filePath string) bool {
	_, err := v.Validate(filePath)
	return err == nil
}

// ValidateFileInfo performs basic validation on file info without opening the PDF
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return jerrors.New(jerrors.ErrorTypeInvalidPath, "path is a directory, not a file").WithFile(filePath)
	}

	if !IsPDFName(filePath) {
		return jerrors.New(jerrors.ErrorTypeInvalidPDF, "file is not a PDF").WithFile(filePath)
	}

	if fileInfo.Size() == 0 {
		return jerrors.New(jerrors.ErrorTypeInvalidPDF, "file is empty").WithFile(filePath)
	}

	if fileInfo.Size() > v.maxFileSize {
		return jerrors.New(jerrors.ErrorTypeInvalidPDF,
			fmt.Sprintf("file too large: %d bytes (max: %d bytes)", fileInfo.Size(), v.maxFileSize)).
			WithFile(filePath)
	}

	return nil
}

// IsPDFName reports whether name has a .pdf extension
func IsPDFName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}
