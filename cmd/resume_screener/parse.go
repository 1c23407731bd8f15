package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-screener/internal/extraction"
	"github.com/jonathan/resume-screener/internal/observability"
	"github.com/jonathan/resume-screener/internal/parsing"
)

// Output formats
const (
	outputText = "text"
	outputJSON = "json"
)

var (
	parseFormat  string
	parseOutput  string
	parseWorkers int
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE...",
	Short: "Parse resumes into structured records",
	Long:  "Extract name, contact details, years of experience, education and online presence from one or more resume files (pdf, docx, html, txt).",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseFormat, "format", "", "document format for every file (default: from the file extension)")
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", outputText, "output format: text or json")
	parseCmd.Flags().IntVarP(&parseWorkers, "workers", "w", 0, "number of files parsed concurrently (default: number of CPUs)")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	if err := checkOutput(parseOutput); err != nil {
		return err
	}

	docs, err := readDocuments(args, parseFormat)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	results, err := a.parser.ParseBatch(cmd.Context(), docs, parseWorkers)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if parseOutput == outputJSON {
		if len(results) == 1 {
			return writeJSON(out, results[0].Parsed)
		}
		return writeJSON(out, parsedByFile(results))
	}

	p := observability.NewPrinter(out)
	for _, r := range results {
		p.PrintParsedDocument(r.Name, r.Parsed)
	}
	return nil
}

// readDocuments reads every file up front so a missing file fails before any parsing.
func readDocuments(paths []string, explicitFormat string) ([]parsing.Document, error) {
	var override extraction.Format
	if explicitFormat != "" {
		f, err := extraction.ParseFormat(explicitFormat)
		if err != nil {
			return nil, err
		}
		override = f
	}

	docs := make([]parsing.Document, 0, len(paths))
	for _, path := range paths {
		format := override
		if format == "" {
			f, err := extraction.FormatFromFilename(path)
			if err != nil {
				return nil, err
			}
			format = f
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read resume: %w", err)
		}
		docs = append(docs, parsing.Document{Name: filepath.Base(path), Data: data, Format: format})
	}
	return docs, nil
}

type parsedFile struct {
	File   string `json:"file"`
	Parsed any    `json:"parsed"`
}

func parsedByFile(results []parsing.Result) []parsedFile {
	out := make([]parsedFile, len(results))
	for i, r := range results {
		out[i] = parsedFile{File: r.Name, Parsed: r.Parsed}
	}
	return out
}

func checkOutput(format string) error {
	if format != outputText && format != outputJSON {
		return fmt.Errorf("unknown output format %q (expected text or json)", format)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
