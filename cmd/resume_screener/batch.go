package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/extraction"
	"github.com/jonathan/resume-screener/internal/observability"
	"github.com/jonathan/resume-screener/internal/report"
)

var (
	batchJD      jdSource
	batchTitle   string
	batchWorkers int
	batchOutput  string
	batchExport  string
	batchSave    bool
)

var batchCmd = &cobra.Command{
	Use:   "batch PATH...",
	Short: "Parse and optionally score many resumes",
	Long:  "Parse every supported resume in the given files and directories concurrently. With a job description each candidate is also scored; results can be stored and exported as a spreadsheet.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatch,
}

func init() {
	batchJD.register(batchCmd)
	batchCmd.Flags().StringVar(&batchTitle, "title", "", "job title recorded with each candidate")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "number of files parsed concurrently (default: number of CPUs)")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", outputText, "output format: text or json")
	batchCmd.Flags().StringVar(&batchExport, "export", "", "write the batch as an Excel spreadsheet to this file")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "store every candidate in the configured store")

	rootCmd.AddCommand(batchCmd)
}

type batchEntry struct {
	File        string        `json:"file"`
	CandidateID string        `json:"candidate_id,omitempty"`
	Candidate   *db.Candidate `json:"candidate"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	if err := checkOutput(batchOutput); err != nil {
		return err
	}

	var jd string
	if batchJD.set() {
		text, err := batchJD.resolve(cmd.Context())
		if err != nil {
			return err
		}
		jd = text
	}
	if (batchSave || batchExport != "") && jd == "" {
		return fmt.Errorf("--save and --export need a job description (--jd, --jd-text or --jd-url)")
	}

	paths, err := collectResumes(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no supported resumes found")
	}
	docs, err := readDocuments(paths, "")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	results, err := a.parser.ParseBatch(ctx, docs, batchWorkers)
	if err != nil {
		return err
	}

	var store db.Store
	if batchSave {
		store, err = openStore(ctx, a.cfg, a.logger)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	entries := make([]batchEntry, len(results))
	rows := make([]observability.BatchRow, len(results))
	candidates := make([]db.Candidate, 0, len(results))
	for i, r := range results {
		c := db.NewCandidate(r.Name, batchTitle, r.Parsed, nil)
		if jd != "" {
			c.Result = a.engine.MatchDocument(r.Parsed, jd)
		}
		entries[i] = batchEntry{File: r.Name, Candidate: c}
		rows[i] = observability.BatchRow{Source: r.Name, Parsed: r.Parsed, Result: c.Result}

		if store != nil {
			id, err := store.AddCandidate(ctx, c)
			if err != nil {
				return fmt.Errorf("failed to store candidate %s: %w", r.Name, err)
			}
			entries[i].CandidateID = id.String()
		}
		if c.Result != nil {
			candidates = append(candidates, *c)
		}
	}

	if batchExport != "" {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Result.Score > candidates[j].Result.Score
		})
		if err := report.SaveExport(batchExport, candidates); err != nil {
			return err
		}
		a.logger.Info("wrote export", zap.String("path", batchExport), zap.Int("candidates", len(candidates)))
	}

	if batchOutput == outputJSON {
		return writeJSON(cmd.OutOrStdout(), entries)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintBatch(rows)
	return nil
}

// collectResumes expands directories into the supported files they contain.
// Files named explicitly are kept whatever their extension, so an unsupported
// one fails with a format error.
func collectResumes(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read resume: %w", err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if _, err := extraction.FormatFromFilename(path); err == nil {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", arg, err)
		}
	}
	return paths, nil
}
