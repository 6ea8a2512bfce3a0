// Package config loads command configuration from the environment.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads target from the process environment.
func ParseEnv(target any) error {
	return parse(target, env.Options{})
}

// ParseEnvFrom loads target from vars instead of the process environment.
func ParseEnvFrom(target any, vars map[string]string) error {
	if vars == nil {
		vars = map[string]string{}
	}
	return parse(target, env.Options{Environment: vars})
}

func parse(target any, opts env.Options) error {
	if target == nil {
		return errors.New("config target is required")
	}
	if err := env.ParseWithOptions(target, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
