package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/config"
	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/logging"
	"github.com/jonathan/resume-screener/internal/matching"
	"github.com/jonathan/resume-screener/internal/ner"
	"github.com/jonathan/resume-screener/internal/parsing"
	"github.com/jonathan/resume-screener/internal/skills"
	"github.com/jonathan/resume-screener/internal/vocabulary"
)

var (
	// Used for flags.
	cfgFile string

	settings = config.NewViper()

	rootCmd = &cobra.Command{
		Use:           config.AppName,
		Short:         "resume-screener parses resumes and scores them against job descriptions",
		Long:          "resume-screener extracts contact details, experience, education and links from PDF, DOCX, HTML and text resumes, and scores candidates against job descriptions by text similarity and skill overlap.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return config.ReadFile(settings, cfgFile)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("vocabulary", "", "skill vocabulary JSON file (default is the embedded vocabulary)")
	rootCmd.PersistentFlags().String("match-mode", "", "skill match mode: substring or word")
	rootCmd.PersistentFlags().String("ner", "", "name recogniser: prose, gemini or none")

	bindFlag("log.debug", rootCmd.PersistentFlags().Lookup("debug"))
	bindFlag("log.json", rootCmd.PersistentFlags().Lookup("json"))
	bindFlag("vocabulary.path", rootCmd.PersistentFlags().Lookup("vocabulary"))
	bindFlag("skills.match_mode", rootCmd.PersistentFlags().Lookup("match-mode"))
	bindFlag("ner.provider", rootCmd.PersistentFlags().Lookup("ner"))
}

// bindFlag binds a flag to a config key. Unchanged flags leave the config value
// (or its default) in place.
func bindFlag(key string, flag *pflag.Flag) {
	if err := settings.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag for %s: %v", key, err))
	}
}

// app holds the services a command needs. close releases them.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	parser *parsing.Parser
	engine *matching.Engine
	closer func() error
}

func (a *app) close() {
	if a.closer != nil {
		if err := a.closer(); err != nil {
			a.logger.Warn("failed to release resources", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// loadConfig decodes and validates the merged flag, env and file configuration.
func loadConfig() (*config.Config, error) {
	return config.FromViper(settings)
}

// newApp builds the logger, parser and match engine from the configuration.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	engine, err := newEngine(cfg, logger)
	if err != nil {
		return nil, err
	}

	recognizer, closeRecognizer, err := ner.New(ctx, cfg.NERSettings(), logger)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		parser: parsing.New(recognizer, logger),
		engine: engine,
		closer: closeRecognizer,
	}, nil
}

func newEngine(cfg *config.Config, logger *zap.Logger) (*matching.Engine, error) {
	vocab, err := vocabulary.Load(cfg.Vocabulary.Path, logger)
	if err != nil {
		return nil, err
	}
	return matching.New(skills.NewMatcher(vocab, cfg.MatchMode()), logger), nil
}

// openStore opens the configured candidate store.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (db.Store, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		database, err := db.Connect(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, err
		}
		return database, nil
	default:
		return db.NewFileStore(cfg.Store.Path, logger)
	}
}
