package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration for consistency.
//
// Struct tags cover the field-level rules (oneof, ranges); the checks below
// cover cross-field constraints the tags cannot express:
//   - pool sizing: min_conns must not exceed max_conns
//   - production mode requires a TLS certificate on the gRPC listener
func Validate(cfg *Config) error {
	v := validator.New()

	if err := v.Struct(cfg); err != nil {
		return err
	}

	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if cfg.Environment == EnvProduction && !cfg.Server.TLS.Enabled() {
		return fmt.Errorf("server.tls: cert_file and key_file are required in production")
	}

	return nil
}
