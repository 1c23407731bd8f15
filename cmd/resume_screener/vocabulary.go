package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-screener/internal/vocabulary"
)

var vocabularyCmd = &cobra.Command{
	Use:   "vocabulary",
	Short: "Inspect skill vocabularies",
}

var vocabularyCheckCmd = &cobra.Command{
	Use:   "check [FILE]",
	Short: "Validate a skill vocabulary file",
	Long:  "Validate a skill vocabulary file against its schema and entry rules. Without FILE the configured vocabulary is checked.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runVocabularyCheck,
}

var vocabularyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the configured vocabulary",
	RunE:  runVocabularyList,
}

func init() {
	vocabularyListCmd.Flags().StringP("output", "o", outputText, "output format: text or json")
	vocabularyCmd.AddCommand(vocabularyCheckCmd, vocabularyListCmd)
	rootCmd.AddCommand(vocabularyCmd)
}

func loadVocabulary(path string) (*vocabulary.Vocabulary, string, error) {
	if path == "" {
		path = settings.GetString("vocabulary.path")
	}
	// The logger is not built here, so a missing file is always an error.
	if path == "" {
		v, err := vocabulary.Default()
		return v, "embedded vocabulary", err
	}
	v, err := vocabulary.Load(path, nil)
	if err != nil {
		return nil, path, err
	}
	if v.Len() == 0 {
		return nil, path, fmt.Errorf("vocabulary %s is missing or empty", path)
	}
	return v, path, nil
}

func runVocabularyCheck(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	}
	v, name, err := loadVocabulary(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d technical, %d soft skills)\n", name, len(v.Technical()), len(v.Soft()))
	return nil
}

func runVocabularyList(cmd *cobra.Command, _ []string) error {
	output, _ := cmd.Flags().GetString("output")
	if err := checkOutput(output); err != nil {
		return err
	}
	v, _, err := loadVocabulary("")
	if err != nil {
		return err
	}
	if output == outputJSON {
		return writeJSON(cmd.OutOrStdout(), v)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Technical skills (%d):\n  %s\n", len(v.Technical()), strings.Join(v.Technical(), ", "))
	fmt.Fprintf(out, "Soft skills (%d):\n  %s\n", len(v.Soft()), strings.Join(v.Soft(), ", "))
	return nil
}
