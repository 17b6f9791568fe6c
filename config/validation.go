package config

import (
	"fmt"
	"strings"
)

// ValidateConfig checks that the configuration is usable for the current environment.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.ServerPort == "" {
		errors = append(errors, "server port is required")
	}
	if cfg.DBHost == "" || cfg.DBPort == "" || cfg.DBName == "" {
		errors = append(errors, "database host, port and name are required")
	}
	if cfg.JWTSecret == "" {
		errors = append(errors, "jwt secret is required")
	}

	if IsProduction() {
		if cfg.JWTSecret == "your-secret-key" {
			errors = append(errors, "jwt secret must not be the default in production")
		}
		if cfg.DBPassword == "" {
			errors = append(errors, "db_password secret is required in production")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "\n"))
	}

	return nil
}
