package pdf

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	jerrors "github.com/a3tai/jorf-reader/internal/errors"
)

const (
	// rowTolerance is the vertical distance under which two text runs
	// belong to the same line.
	rowTolerance = 2.0
	// wordGapRatio is the horizontal gap, relative to the font size, that
	// separates two words on a line.
	wordGapRatio = 0.2
)

// Reader opens gazette PDFs for page-by-page text extraction
type Reader struct {
	validator *Validator
}

// NewReader creates a new PDF reader with the specified constraints
func NewReader(maxFileSize int64) *Reader {
	return &Reader{validator: NewValidator(maxFileSize)}
}

// Open checks the file and opens it. The caller must Close the document.
func (r *Reader) Open(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, jerrors.Wrap(jerrors.ErrorTypeInvalidPath, "cannot access file", err).WithFile(path)
	}
	if err := r.validator.ValidateFileInfo(path, info); err != nil {
		return nil, err
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, jerrors.Wrap(jerrors.ErrorTypeInvalidPDF, "failed to open PDF", err).WithFile(path)
	}

	return &Document{file: f, reader: reader, path: path}, nil
}

// Document is an open PDF. It implements gazette.PageSource.
type Document struct {
	file   *os.File
	reader *pdf.Reader
	path   string
}

// Path returns the file the document was opened from
func (d *Document) Path() string {
	return d.path
}

// NumPage returns the number of pages
func (d *Document) NumPage() int {
	return d.reader.NumPage()
}

// PageFragments returns the text lines of a page, top to bottom.
// Pages are numbered from 1. An empty page yields no fragments.
func (d *Document) PageFragments(pageNum int) (fragments []string, err error) {
	if pageNum < 1 || pageNum > d.reader.NumPage() {
		return nil, fmt.Errorf("invalid page number %d (document has %d pages)", pageNum, d.reader.NumPage())
	}

	// ledongthuc/pdf panics on some malformed content streams
	defer func() {
		if rec := recover(); rec != nil {
			fragments = nil
			err = jerrors.New(jerrors.ErrorTypeInvalidPDF, "failed to decode page content").
				WithContext(fmt.Sprintf("page %d: %v", pageNum, rec)).
				WithFile(d.path)
		}
	}()

	page := d.reader.Page(pageNum)
	if page.V.IsNull() {
		return nil, nil
	}

	if fragments = linesOf(page.Content().Text); len(fragments) > 0 {
		return fragments, nil
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		return nil, jerrors.Wrap(jerrors.ErrorTypeInvalidPDF, "failed to extract page text", err).
			WithContext(fmt.Sprintf("page %d", pageNum)).
			WithFile(d.path)
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			fragments = append(fragments, line)
		}
	}
	return fragments, nil
}

// Close closes the underlying file
func (d *Document) Close() error {
	return d.file.Close()
}

// linesOf groups text runs into lines in content-stream order. A new line
// starts whenever the baseline moves.
func linesOf(texts []pdf.Text) []string {
	var (
		lines   []string
		line    strings.Builder
		lastY   float64
		lastEnd float64
		started bool
	)
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		switch {
		case !started:
			started = true
		case math.Abs(t.Y-lastY) > rowTolerance:
			lines = append(lines, line.String())
			line.Reset()
		case t.X-lastEnd > t.FontSize*wordGapRatio:
			line.WriteByte(' ')
		}
		line.WriteString(t.S)
		lastY, lastEnd = t.Y, t.X+t.W
	}
	if started {
		lines = append(lines, line.String())
	}
	return lines
}
