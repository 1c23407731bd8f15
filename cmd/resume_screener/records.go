package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/logging"
	"github.com/jonathan/resume-screener/internal/observability"
	"github.com/jonathan/resume-screener/internal/report"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Manage stored candidates and jobs",
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored candidates, newest first",
	RunE:  runRecordsList,
}

var recordsExportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export stored candidates to an Excel spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordsExport,
}

var recordsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored candidate and job",
	RunE:  runRecordsClear,
}

func init() {
	recordsListCmd.Flags().StringP("output", "o", outputText, "output format: text or json")
	recordsClearCmd.Flags().Bool("yes", false, "confirm deletion")
	recordsCmd.AddCommand(recordsListCmd, recordsExportCmd, recordsClearCmd)
	rootCmd.AddCommand(recordsCmd)
}

func withStore(cmd *cobra.Command, fn func(store db.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := openStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func runRecordsList(cmd *cobra.Command, _ []string) error {
	output, _ := cmd.Flags().GetString("output")
	if err := checkOutput(output); err != nil {
		return err
	}
	return withStore(cmd, func(store db.Store) error {
		candidates, err := store.ListCandidates(cmd.Context())
		if err != nil {
			return err
		}
		if output == outputJSON {
			return writeJSON(cmd.OutOrStdout(), candidates)
		}

		rows := make([]observability.BatchRow, len(candidates))
		for i := range candidates {
			rows[i] = observability.BatchRow{
				Source: candidates[i].SourceFile,
				Parsed: candidates[i].Document(),
				Result: candidates[i].Result,
			}
		}
		observability.NewPrinter(cmd.OutOrStdout()).PrintBatch(rows)
		return nil
	})
}

func runRecordsExport(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(store db.Store) error {
		candidates, err := store.ListCandidates(cmd.Context())
		if err != nil {
			return err
		}
		if err := report.SaveExport(args[0], candidates); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d candidates to %s\n", len(candidates), args[0])
		return nil
	})
}

func runRecordsClear(cmd *cobra.Command, _ []string) error {
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		return errors.New("refusing to delete records without --yes")
	}
	return withStore(cmd, func(store db.Store) error {
		if err := store.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "records cleared")
		return nil
	})
}
