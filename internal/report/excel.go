// Package report renders screening results as Excel workbooks.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/types"
)

const (
	// ReportSheet is the sheet holding a single candidate report
	ReportSheet = "Report"
	// ExportSheet is the sheet holding the candidate table
	ExportSheet = "Candidates"

	reportTitle = "Resume Analysis Report"

	noMatchedSkills = "No specific skills matched."
	noMissingSkills = "No critical skills missing."
)

var bandColors = map[types.ScoreBand]string{
	types.BandStrong:   "008000",
	types.BandModerate: "FFA500",
	types.BandWeak:     "FF0000",
}

// FileName returns the report file name for a resume source file, e.g. "report_cv.xlsx".
func FileName(source string) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "resume"
	}
	return "report_" + base + ".xlsx"
}

// WriteCandidate renders a single candidate report to w
func WriteCandidate(w io.Writer, c *db.Candidate) error {
	if c == nil {
		return fmt.Errorf("candidate is required")
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReportSheet); err != nil {
		return err
	}
	if err := createCandidateSheet(f, ReportSheet, c); err != nil {
		return fmt.Errorf("failed to create report sheet: %w", err)
	}
	return write(f, w)
}

// SaveCandidate renders a single candidate report to path
func SaveCandidate(path string, c *db.Candidate) error {
	return saveTo(path, func(w io.Writer) error { return WriteCandidate(w, c) })
}

// WriteExport renders a table of candidates to w, one row per candidate in the given order
func WriteExport(w io.Writer, candidates []db.Candidate) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return err
	}
	if err := createExportSheet(f, ExportSheet, candidates); err != nil {
		return fmt.Errorf("failed to create export sheet: %w", err)
	}
	return write(f, w)
}

// SaveExport renders a table of candidates to path
func SaveExport(path string, candidates []db.Candidate) error {
	return saveTo(path, func(w io.Writer) error { return WriteExport(w, candidates) })
}

func write(f *excelize.File, w io.Writer) error {
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func saveTo(path string, render func(io.Writer) error) error {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func (s *sheetWriter) cell(col int) string {
	name, _ := excelize.CoordinatesToCellName(col, s.row)
	return name
}

func (s *sheetWriter) line(value any, style int) {
	if s.err != nil {
		return
	}
	cell := s.cell(1)
	if s.err = s.f.SetCellValue(s.sheet, cell, value); s.err != nil {
		return
	}
	if style != 0 {
		s.err = s.f.SetCellStyle(s.sheet, cell, cell, style)
	}
	s.row++
}

func (s *sheetWriter) skip() { s.row++ }

func createCandidateSheet(f *excelize.File, sheet string, c *db.Candidate) error {
	if err := f.SetColWidth(sheet, "A", "A", 90); err != nil {
		return err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	sectionStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C8DCFF"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	missingStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Color: "C80000"},
		Alignment: &excelize.Alignment{WrapText: true},
	})
	if err != nil {
		return err
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true},
	})
	if err != nil {
		return err
	}

	w := &sheetWriter{f: f, sheet: sheet, row: 1}
	w.line(reportTitle, titleStyle)
	w.skip()

	w.line("Candidate Profile", sectionStyle)
	w.line("Name: "+c.Name, 0)
	w.line("Email: "+types.StringOr(c.Email, "N/A"), 0)
	w.line("Phone: "+types.StringOr(c.Phone, "N/A"), 0)
	w.line("Experience: "+formatNumber(c.ExperienceYears)+" years detected", 0)
	w.skip()

	if links := linkLines(c.Links); len(links) > 0 {
		w.line("Online Presence", sectionStyle)
		for _, l := range links {
			w.line(l, 0)
		}
		w.skip()
	}

	if len(c.Education) > 0 {
		w.line("Education", sectionStyle)
		for _, e := range c.Education {
			w.line("- "+e, 0)
		}
		w.skip()
	}

	result := c.Result
	if result == nil {
		result = &types.MatchResult{}
	}
	scoreStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 24, Color: bandColors[result.Band()]},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	w.line("Match Score", sectionStyle)
	w.line(formatNumber(result.Score)+"%", scoreStyle)
	w.skip()

	w.line("Matched Skills", sectionStyle)
	if len(result.MatchedSkills) > 0 {
		w.line(strings.Join(result.MatchedSkills, ", "), wrapStyle)
	} else {
		w.line(noMatchedSkills, 0)
	}
	w.skip()

	w.line("Missing Skills", sectionStyle)
	if len(result.MissingSkills) > 0 {
		w.line(strings.Join(result.MissingSkills, ", "), missingStyle)
	} else {
		w.line(noMissingSkills, 0)
	}

	return w.err
}

var exportHeaders = []string{
	"Name", "Email", "Phone", "Experience (years)", "Education",
	"LinkedIn", "GitHub", "Portfolio", "Job Title", "Match Score",
	"Matched Skills", "Missing Skills", "Source File", "Screened At",
}

func createExportSheet(f *excelize.File, sheet string, candidates []db.Candidate) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return err
	}

	bandStyles := make(map[types.ScoreBand]int, len(bandColors))
	for band, color := range bandColors {
		style, err := f.NewStyle(&excelize.Style{
			Font:   &excelize.Font{Bold: true, Color: color},
			NumFmt: 2,
		})
		if err != nil {
			return err
		}
		bandStyles[band] = style
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return err
	}

	widths := map[string]float64{"A": 25, "B": 30, "C": 18, "D": 12, "E": 40, "F": 35, "G": 35,
		"H": 40, "I": 25, "J": 12, "K": 40, "L": 40, "M": 25, "N": 20}
	for col, width := range widths {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}

	for i := range candidates {
		c := &candidates[i]
		row := i + 2
		result := c.Result
		if result == nil {
			result = &types.MatchResult{}
		}

		values := []any{
			c.Name,
			types.StringOr(c.Email, "N/A"),
			types.StringOr(c.Phone, "N/A"),
			c.ExperienceYears,
			strings.Join(c.Education, "; "),
			types.StringOr(c.Links.LinkedIn, ""),
			types.StringOr(c.Links.GitHub, ""),
			strings.Join(c.Links.Portfolio, "\n"),
			c.JobTitle,
			result.Score,
			strings.Join(result.MatchedSkills, ", "),
			strings.Join(result.MissingSkills, ", "),
			c.SourceFile,
			"",
		}
		if !c.CreatedAt.IsZero() {
			values[len(values)-1] = c.CreatedAt.UTC().Format("2006-01-02 15:04:05")
		}

		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		scoreCell, _ := excelize.CoordinatesToCellName(10, row)
		if err := f.SetCellStyle(sheet, scoreCell, scoreCell, bandStyles[result.Band()]); err != nil {
			return err
		}
	}
	return nil
}

func linkLines(l types.Links) []string {
	var lines []string
	if l.LinkedIn != nil && *l.LinkedIn != "" {
		lines = append(lines, "LinkedIn: "+*l.LinkedIn)
	}
	if l.GitHub != nil && *l.GitHub != "" {
		lines = append(lines, "GitHub: "+*l.GitHub)
	}
	for _, p := range l.Portfolio {
		lines = append(lines, "Portfolio: "+p)
	}
	return lines
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
