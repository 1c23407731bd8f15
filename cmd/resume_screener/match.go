package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/fetch"
	"github.com/jonathan/resume-screener/internal/observability"
	"github.com/jonathan/resume-screener/internal/report"
	"github.com/jonathan/resume-screener/internal/types"
)

var (
	matchJD     jdSource
	matchTitle  string
	matchFormat string
	matchOutput string
	matchReport string
	matchSave   bool
)

var matchCmd = &cobra.Command{
	Use:   "match RESUME",
	Short: "Score a resume against a job description",
	Long:  "Parse a resume, score it against a job description by text similarity, and list the vocabulary skills it matches and misses.",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatch,
}

func init() {
	matchJD.register(matchCmd)
	matchCmd.Flags().StringVar(&matchTitle, "title", "", "job title recorded with the candidate")
	matchCmd.Flags().StringVar(&matchFormat, "format", "", "resume format (default: from the file extension)")
	matchCmd.Flags().StringVarP(&matchOutput, "output", "o", outputText, "output format: text or json")
	matchCmd.Flags().StringVar(&matchReport, "report", "", "write an Excel report to this file or directory")
	matchCmd.Flags().BoolVar(&matchSave, "save", false, "store the candidate in the configured store")

	rootCmd.AddCommand(matchCmd)
}

type matchOutputJSON struct {
	CandidateID string                `json:"candidate_id,omitempty"`
	Parsed      *types.ParsedDocument `json:"parsed"`
	Result      *types.MatchResult    `json:"result"`
	Band        types.ScoreBand       `json:"band"`
	Report      string                `json:"report,omitempty"`
}

func runMatch(cmd *cobra.Command, args []string) error {
	if err := checkOutput(matchOutput); err != nil {
		return err
	}
	jd, err := matchJD.resolve(cmd.Context())
	if err != nil {
		return err
	}
	docs, err := readDocuments(args, matchFormat)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	doc := a.parser.Parse(ctx, docs[0].Data, docs[0].Format)
	result := a.engine.MatchDocument(doc, jd)
	candidate := db.NewCandidate(docs[0].Name, matchTitle, doc, result)

	out := matchOutputJSON{Parsed: doc, Result: result, Band: result.Band()}

	if matchSave {
		store, err := openStore(ctx, a.cfg, a.logger)
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := store.AddCandidate(ctx, candidate)
		if err != nil {
			return fmt.Errorf("failed to store candidate: %w", err)
		}
		out.CandidateID = id.String()
		a.logger.Info("stored candidate", zap.String("candidate_id", out.CandidateID))
	}

	if matchReport != "" {
		path := reportPath(matchReport, docs[0].Name)
		if err := report.SaveCandidate(path, candidate); err != nil {
			return err
		}
		out.Report = path
		a.logger.Info("wrote report", zap.String("path", path))
	}

	if matchOutput == outputJSON {
		return writeJSON(cmd.OutOrStdout(), out)
	}

	p := observability.NewPrinter(cmd.OutOrStdout())
	p.PrintParsedDocument(docs[0].Name, doc)
	p.PrintMatchResult(result)
	if out.CandidateID != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Candidate ID: %s\n", out.CandidateID)
	}
	if out.Report != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Report: %s\n", out.Report)
	}
	return nil
}

// jdSource holds the job description flags shared by match and batch.
type jdSource struct {
	file string
	text string
	url  string
}

func (s *jdSource) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.file, "jd", "", "path to a job description text file")
	cmd.Flags().StringVar(&s.text, "jd-text", "", "job description text")
	cmd.Flags().StringVar(&s.url, "jd-url", "", "URL of a job posting to download")
}

func (s *jdSource) set() bool {
	return s.file != "" || s.text != "" || s.url != ""
}

// resolve returns the job description from exactly one of a file, inline text or a posting URL.
func (s *jdSource) resolve(ctx context.Context) (string, error) {
	given := 0
	for _, v := range []string{s.file, s.text, s.url} {
		if v != "" {
			given++
		}
	}
	if given > 1 {
		return "", errors.New("use only one of --jd, --jd-text or --jd-url")
	}

	text := s.text
	switch {
	case s.file != "":
		data, err := os.ReadFile(s.file)
		if err != nil {
			return "", fmt.Errorf("failed to read job description: %w", err)
		}
		text = string(data)
	case s.url != "":
		posting, err := fetch.New(fetch.Options{}, nil).JobDescription(ctx, s.url)
		if err != nil {
			return "", fmt.Errorf("failed to download job description: %w", err)
		}
		text = posting
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("a job description is required (--jd, --jd-text or --jd-url)")
	}
	return text, nil
}

// reportPath places the report for source inside target when target is a
// directory or ends in a separator; otherwise target names the file.
func reportPath(target, source string) string {
	info, err := os.Stat(target)
	isDir := err == nil && info.IsDir()
	if isDir || strings.HasSuffix(target, string(os.PathSeparator)) || strings.HasSuffix(target, "/") {
		return filepath.Join(target, report.FileName(source))
	}
	if !strings.HasSuffix(strings.ToLower(target), ".xlsx") {
		target += ".xlsx"
	}
	return target
}
