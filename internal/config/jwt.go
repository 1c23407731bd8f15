package config

import (
	"fmt"
)

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// JWT returns the API token settings. It returns nil, nil when no secret is
// configured, which leaves the API unauthenticated.
func (c *Config) JWT() (*JWTConfig, error) {
	if c.Server.JWTSecret == "" {
		return nil, nil
	}
	return NewJWTConfig(c.Server.JWTSecret, c.Server.JWTExpirationHours)
}

// NewJWTConfig creates a validated JWT configuration. A zero expiration defaults to 24 hours.
func NewJWTConfig(secret string, expirationHours int) (*JWTConfig, error) {
	if expirationHours == 0 {
		expirationHours = 24
	}

	config := &JWTConfig{
		Secret:          secret,
		ExpirationHours: expirationHours,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("jwt secret cannot be empty")
	}
	if len(c.Secret) < 16 {
		return fmt.Errorf("jwt secret must be at least 16 characters, got: %d", len(c.Secret))
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("jwt expiration must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
