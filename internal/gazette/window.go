package gazette

import (
	"fmt"
	"regexp"
	"strings"

	jerrors "github.com/a3tai/jorf-reader/internal/errors"
)

// EndMarker identifies which boundary closes the naturalization window
type EndMarker int

const (
	EndMarkerISSN EndMarker = iota
	EndMarkerAmendment
	EndMarkerRescinding
	EndMarkerAnnouncements
)

// String returns a string representation of the EndMarker
func (m EndMarker) String() string {
	switch m {
	case EndMarkerAmendment:
		return "amendment"
	case EndMarkerRescinding:
		return "rescinding"
	case EndMarkerAnnouncements:
		return "announcements"
	default:
		return "issn"
	}
}

// PageSource is an opened gazette issue: ordered pages (numbered from 1)
// holding ordered text fragments.
type PageSource interface {
	NumPage() int
	PageFragments(pageNum int) ([]string, error)
}

// Document is the text-level result of reading one gazette issue
type Document struct {
	Date        string    `json:"date"`
	Window      string    `json:"window"`
	EndMarker   EndMarker `json:"end_marker"`
	DecreeCount int       `json:"decree_count"`
	Pages       int       `json:"pages"`
}

// Extractor reduces gazette issues to their naturalization window
type Extractor struct {
	markers Markers
	start   *regexp.Regexp
	ends    map[EndMarker]*regexp.Regexp
}

// NewExtractor compiles the marker table
func NewExtractor(markers Markers) (*Extractor, error) {
	if err := markers.Validate(); err != nil {
		return nil, fmt.Errorf("invalid markers: %w", err)
	}

	return &Extractor{
		markers: markers,
		start:   regexp.MustCompile(markers.Start),
		ends: map[EndMarker]*regexp.Regexp{
			EndMarkerAmendment:     regexp.MustCompile(regexp.QuoteMeta(markers.Amendment)),
			EndMarkerRescinding:    regexp.MustCompile(regexp.QuoteMeta(markers.Rescinding)),
			EndMarkerAnnouncements: regexp.MustCompile(regexp.QuoteMeta(markers.AnnouncementsEnd)),
			EndMarkerISSN:          regexp.MustCompile(markers.ISSN),
		},
	}, nil
}

// Markers returns the marker table the extractor was built with
func (e *Extractor) Markers() Markers {
	return e.markers
}

// SelectEndMarker decides from the normalized first page which boundary
// closes the window. An amendment decree only bounds the window when it is
// listed after the naturalization decrees; otherwise it belongs to the
// preamble and the announcements or ISSN marker applies.
func (e *Extractor) SelectEndMarker(firstPage string) EndMarker {
	m := e.markers
	switch {
	case strings.Contains(firstPage, m.Amendment):
		natIdx := strings.Index(firstPage, m.Naturalization)
		if natIdx >= 0 && strings.Index(firstPage, m.Amendment) > natIdx {
			return EndMarkerAmendment
		}
		if strings.Contains(firstPage, m.Announcements) {
			return EndMarkerAnnouncements
		}
		return EndMarkerISSN
	case strings.Contains(firstPage, m.Rescinding):
		return EndMarkerRescinding
	case strings.Contains(firstPage, m.Announcements):
		return EndMarkerAnnouncements
	default:
		return EndMarkerISSN
	}
}

// Window returns the part of body between the first start-marker match
// and the following end-marker match. body holds the normalized text of
// pages two to last.
func (e *Extractor) Window(body string, end EndMarker) (string, error) {
	loc := e.start.FindStringIndex(body)
	if loc == nil {
		return "", jerrors.New(jerrors.ErrorTypeMarkerNotFound, "start marker not found").
			WithContext(e.markers.Start)
	}
	lower := loc[0]

	endLoc := e.ends[end].FindStringIndex(body[lower:])
	if endLoc == nil {
		return "", jerrors.New(jerrors.ErrorTypeMarkerNotFound, "end marker not found").
			WithContext(end.String())
	}
	upper := lower + endLoc[0]

	return body[lower:upper], nil
}

// Extract reads src page by page and returns its decree date, decree count
// and naturalization window.
func (e *Extractor) Extract(src PageSource) (*Document, error) {
	pageCount := src.NumPage()
	if pageCount < 1 {
		return nil, jerrors.New(jerrors.ErrorTypeInvalidPDF, "document has no pages")
	}

	firstFragments, err := src.PageFragments(1)
	if err != nil {
		return nil, fmt.Errorf("failed to read first page: %w", err)
	}
	firstPage := NormalizePage(firstFragments, e.markers.Masthead)

	date, err := DecreeDateFromPage(firstFragments, firstPage)
	if err != nil {
		return nil, err
	}

	end := e.SelectEndMarker(firstPage)

	var body strings.Builder
	for pageNum := 2; pageNum <= pageCount; pageNum++ {
		fragments, err := src.PageFragments(pageNum)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", pageNum, err)
		}
		body.WriteString(" ")
		body.WriteString(NormalizePage(fragments, e.markers.Masthead))
	}

	window, err := e.Window(body.String(), end)
	if err != nil {
		return nil, err
	}

	return &Document{
		Date:        date,
		Window:      window,
		EndMarker:   end,
		DecreeCount: CountDecrees(firstFragments, e.markers),
		Pages:       pageCount,
	}, nil
}
