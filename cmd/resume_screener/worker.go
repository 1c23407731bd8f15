package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/config"
	"github.com/jonathan/resume-screener/internal/source"
	"github.com/jonathan/resume-screener/internal/worker"
)

var workerSourceDir string

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume screening requests from RabbitMQ",
	Long:  "Consume screening requests from the configured queue, fetch each resume from S3 (or a local directory), score it against the request's job description, store the candidate and publish status updates.",
	RunE:  runWorker,
}

func init() {
	workerCmd.Flags().StringVar(&workerSourceDir, "source-dir", "", "read resumes from this directory instead of S3")
	workerCmd.Flags().Int("concurrency", 0, "number of concurrent consumers (default: worker.concurrency)")
	workerCmd.Flags().String("amqp-url", "", "RabbitMQ URL (default: amqp.url)")
	bindFlag("worker.concurrency", workerCmd.Flags().Lookup("concurrency"))
	bindFlag("amqp.url", workerCmd.Flags().Lookup("amqp-url"))
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	src, err := newSource(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	processor := worker.NewProcessor(src, a.parser, a.engine, store, a.logger)
	consumer := worker.NewConsumer(a.cfg.WorkerSettings(), processor, a.logger)

	a.logger.Info("worker starting")
	if err := consumer.Run(ctx); err != nil {
		return err
	}
	a.logger.Info("worker stopped")
	return nil
}

func newSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (source.Source, error) {
	if workerSourceDir != "" {
		logger.Info("reading resumes from local directory", zap.String("dir", workerSourceDir))
		return source.FileSource{Root: workerSourceDir}, nil
	}
	return source.NewS3Source(ctx, cfg.S3, logger)
}
