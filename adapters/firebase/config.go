package firebase

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the project-level settings for the REST adapter.
type Config struct {
	// APIKey is the web API key of the identity project.
	APIKey string `env:"FIREBASE_API_KEY,required"`
	// DatabaseURL is the root of the realtime database, no trailing slash.
	DatabaseURL string `env:"FIREBASE_DATABASE_URL,required"`
	// IdentityEndpoint overrides the identity toolkit base URL in tests.
	IdentityEndpoint string `env:"FIREBASE_IDENTITY_ENDPOINT" envDefault:"https://identitytoolkit.googleapis.com/v1"`
	// Timeout bounds every REST call.
	Timeout time.Duration `env:"FIREBASE_HTTP_TIMEOUT" envDefault:"15s"`
}

// ConfigFromEnv loads the adapter configuration from the environment.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
