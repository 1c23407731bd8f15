package config

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used when server.bcrypt_cost is unset
const DefaultBcryptCost = 12

// PasswordConfig holds configuration for hashing and verifying the API login password.
type PasswordConfig struct {
	BcryptCost int
	Hash       string // bcrypt hash of the login password; empty disables login
}

// Passwords returns the login password settings.
func (c *Config) Passwords() (*PasswordConfig, error) {
	return NewPasswordConfig(c.Server.BcryptCost, c.Server.PasswordHash)
}

// NewPasswordConfig creates a validated password configuration. A zero cost
// selects DefaultBcryptCost.
func NewPasswordConfig(cost int, hash string) (*PasswordConfig, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}

	config := &PasswordConfig{
		BcryptCost: cost,
		Hash:       hash,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *PasswordConfig) normalize() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	if c.Hash != "" {
		if _, err := bcrypt.Cost([]byte(c.Hash)); err != nil {
			return fmt.Errorf("invalid server.password_hash: %w", err)
		}
	}
	return nil
}

// Enabled reports whether a login password is configured.
func (c *PasswordConfig) Enabled() bool {
	return c != nil && c.Hash != ""
}

// HashPassword hashes a password using bcrypt.
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword verifies a password against the configured hash.
func (c *PasswordConfig) VerifyPassword(pw string) bool {
	if !c.Enabled() {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(c.Hash), []byte(pw))
	return err == nil
}
