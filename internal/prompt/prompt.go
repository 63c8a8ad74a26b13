// Package prompt implements the interactive lookup: it asks for the JOs
// folder, a name and a series, brings the series up to date from the
// folder and prints the matching record.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/a3tai/jorf-reader/internal/config"
	"github.com/a3tai/jorf-reader/internal/gazette"
	"github.com/a3tai/jorf-reader/internal/lookup"
	"github.com/a3tai/jorf-reader/internal/service"
)

const (
	folderQuestion    = "Path of the folder containing the JOs PDFs as downloaded from https://www.legifrance.gouv.fr"
	firstNameQuestion = "First name of the person of interest"
	lastNameQuestion  = "Last name of the person of interest"
	seriesQuestion    = "Series of the person of interest (from the dossier number, e.g. 054 for 2020X 054, keep the leading 0)"

	notDirectoryMessage  = "The file path passed is not a directory"
	invalidSeriesMessage = "The series number is invalid: must be between 000 and 054, or within the special numbers 300 to 305."
	noAnswerMessage      = "No answer given: input ended before all questions were answered"
)

// Pipeline is the part of the service the prompt drives
type Pipeline interface {
	ProcessFolder(ctx context.Context, dir, series string, force bool) (*service.BatchResult, error)
	Search(q lookup.Query) (gazette.Person, bool)
}

// Session reads answers from in and writes to out
type Session struct {
	in     *bufio.Scanner
	out    io.Writer
	styles *Styles
	p      Pipeline

	defaultDir    string
	defaultSeries string
}

// NewSession creates a prompt session. Empty answers to the folder and
// series questions take the given defaults.
func NewSession(in io.Reader, out io.Writer, p Pipeline, defaultDir, defaultSeries string) *Session {
	return &Session{
		in:            bufio.NewScanner(in),
		out:           out,
		styles:        NewStyles(out),
		p:             p,
		defaultDir:    defaultDir,
		defaultSeries: defaultSeries,
	}
}

// Run asks the four questions, processes the folder for the chosen series
// and prints the first matching record. Invalid answers print a message
// and end the session without an error, as does input ending early.
func (s *Session) Run(ctx context.Context) error {
	err := s.run(ctx)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		s.fail(noAnswerMessage)
		return nil
	}
	return err
}

func (s *Session) run(ctx context.Context) error {
	fmt.Fprintln(s.out, s.styles.Title.Render("JORF naturalization lookup"))

	dir, err := s.ask(folderQuestion, s.defaultDir)
	if err != nil {
		return err
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		s.fail(notDirectoryMessage)
		return nil
	}

	first, err := s.ask(firstNameQuestion, "")
	if err != nil {
		return err
	}
	last, err := s.ask(lastNameQuestion, "")
	if err != nil {
		return err
	}
	series, err := s.ask(seriesQuestion, s.defaultSeries)
	if err != nil {
		return err
	}
	if !config.IsValidSeries(series) {
		s.fail(invalidSeriesMessage)
		return nil
	}

	result, err := s.p.ProcessFolder(ctx, dir, series, false)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, s.styles.Muted.Render(fmt.Sprintf("Series %s: %s new document(s), %s person(s) recorded, %d failed",
		series, humanize.Comma(int64(result.Processed())), humanize.Comma(int64(result.Persons())), result.Failed)))

	person, ok := s.p.Search(lookup.Query{FirstName: first, LastName: last, Series: series, SeriesKnown: true})
	if !ok {
		s.fail(lookup.NotFoundMessage)
		return nil
	}
	fmt.Fprintln(s.out, s.styles.Success.Render("Found"))
	fmt.Fprintln(s.out, s.Record(person))
	return nil
}

// ask prints question and returns the trimmed answer, or def when the
// answer is empty.
func (s *Session) ask(question, def string) (string, error) {
	label := question
	if def != "" {
		label += " [" + def + "]"
	}
	fmt.Fprint(s.out, s.styles.Label.Render(label+": "))

	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("reading answer: %w", err)
		}
		return "", fmt.Errorf("reading answer: %w", io.ErrUnexpectedEOF)
	}
	answer := strings.TrimSpace(s.in.Text())
	if answer == "" {
		answer = def
	}
	return answer, nil
}

func (s *Session) fail(msg string) {
	fmt.Fprintln(s.out, s.styles.Error.Render(msg))
}

// Record renders a person as a bordered block
func (s *Session) Record(p gazette.Person) string {
	rows := [][2]string{
		{"Decree date", p.Date},
		{"Series", p.Series},
		{"Dossier", p.Dossier},
		{"Department", p.Dep},
		{"Country", p.Country},
		{"Birth place", p.BirthPlace},
	}

	var b strings.Builder
	b.WriteString(s.styles.Title.Render(p.Name))
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(s.styles.Label.Render(fmt.Sprintf("%-12s", row[0])))
		b.WriteString(s.styles.Value.Render(row[1]))
	}
	return s.styles.Record.Render(b.String())
}
