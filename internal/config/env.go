package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvGatewayURL = "TXCORE_GATEWAY_URL"
	EnvAPIKey     = "TXCORE_API_KEY" // #nosec G101 -- false positive, this is a const name not a credential
	EnvRate       = "TXCORE_RATE_PER_SECOND"
	EnvFormat     = "TXCORE_OUTPUT_FORMAT"
	EnvVerbose    = "TXCORE_VERBOSE"
	EnvLogLevel   = "TXCORE_LOG_LEVEL"
)

// LoadDotEnv loads a .env file into the process environment when one is
// present. Variables already set in the environment win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// ApplyEnvironment applies environment variable overrides to the
// configuration.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvGatewayURL); v != "" {
		cfg.Service.BaseURL = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.Service.APIKey = v
	}

	if v := os.Getenv(EnvRate); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil && rate > 0 {
			cfg.Service.RatePerSecond = rate
		}
	}

	if v := os.Getenv(EnvFormat); v != "" {
		cfg.Output.Format = strings.ToLower(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}
