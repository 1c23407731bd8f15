// Package main provides the resume-screener CLI: resume parsing, job matching,
// the REST API server and the queue worker.
package main

import (
	"fmt"
	"os"

	"github.com/jonathan/resume-screener/internal/config"
)

func main() {
	// Load .env file if it exists
	config.LoadDotEnv()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
