package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token SUBJECT",
	Short: "Issue an API bearer token",
	Long:  "Issue a signed bearer token for the API client named SUBJECT, using server.jwt_secret and server.jwt_expiration_hours.",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Hash a login password for server.password_hash",
	Long:  "Read a password from the first line of stdin and print its bcrypt hash. Set the hash as server.password_hash to enable POST /auth/token.",
	Args:  cobra.NoArgs,
	RunE:  runHashPassword,
}

func init() {
	tokenCmd.Flags().Int("hours", 0, "token lifetime in hours (default: server.jwt_expiration_hours)")
	bindFlag("server.jwt_expiration_hours", tokenCmd.Flags().Lookup("hours"))
	rootCmd.AddCommand(tokenCmd, hashPasswordCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	jwtService, err := newJWTService(cfg)
	if err != nil {
		return err
	}
	if jwtService == nil {
		return errors.New("server.jwt_secret is required to issue tokens (set SCREENER_SERVER_JWT_SECRET)")
	}

	token, err := jwtService.GenerateToken(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func runHashPassword(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	passwords, err := cfg.Passwords()
	if err != nil {
		return err
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return errors.New("no password given on stdin")
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return errors.New("password cannot be empty")
	}

	hash, err := passwords.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
