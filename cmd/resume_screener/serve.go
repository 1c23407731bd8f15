package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-screener/internal/config"
	"github.com/jonathan/resume-screener/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for parsing resumes, scoring candidates and browsing stored results.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	bindFlag("server.port", serveCmd.Flags().Lookup("port"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	jwtService, err := newJWTService(a.cfg)
	if err != nil {
		return err
	}
	if jwtService == nil {
		a.logger.Warn("server.jwt_secret is not set, API authentication is disabled")
	}
	passwords, err := a.cfg.Passwords()
	if err != nil {
		return err
	}

	store, err := openStore(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Port:           a.cfg.Server.Port,
		MaxUploadBytes: a.cfg.MaxUploadBytes(),
		AllowedOrigin:  a.cfg.Server.AllowedOrigin,
		RateLimit:      a.cfg.RateLimitSettings(),
		JWT:            jwtService,
		Passwords:      passwords,
	}, server.Deps{
		Store:  store,
		Parser: a.parser,
		Engine: a.engine,
		Logger: a.logger,
	})
	if err != nil {
		store.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// newJWTService returns nil when no signing secret is configured.
func newJWTService(cfg *config.Config) (*server.JWTService, error) {
	jwtCfg, err := cfg.JWT()
	if err != nil {
		return nil, err
	}
	if jwtCfg == nil {
		return nil, nil
	}
	return server.NewJWTService(jwtCfg), nil
}
