package env

import (
	"os"
	"strings"

	"github.com/ekisa-team/whisperd/internal/envvar"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is the default environment.
	Development Environment = "development"
	// Production enables machine-readable logging.
	Production Environment = "production"
)

// FromEnv determines the environment from WHISPERD_ENV.
func FromEnv() Environment {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(envvar.WhisperdEnv))) {
	case "production", "prod":
		return Production
	default:
		return Development
	}
}

// IsProduction reports whether e is the production environment.
func (e Environment) IsProduction() bool {
	return e == Production
}
