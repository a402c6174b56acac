package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const productionLoginHost = "https://login.salesforce.com"

// Config carries everything a Lambda needs to talk to the CRM. All values
// come from the function environment; Load fails fast on missing required
// fields so misconfiguration surfaces at cold start, not mid-request.
type Config struct {
	APIVersion string `envconfig:"SF_VERSION" required:"true"`
	Host       string `envconfig:"SF_HOST" required:"true"`
	Username   string `envconfig:"SF_USERNAME" required:"true"`
	Production bool   `envconfig:"SF_PRODUCTION"`
	SecretID   string `envconfig:"SF_CREDENTIALS_SECRETS_MANAGER_ARN" required:"true"`
	Namespace  string `envconfig:"SF_ADAPTER_NAMESPACE"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the configuration from the environment. When IS_LOCAL is set a
// .env file is loaded first so local runs don't need exported variables.
func Load() (*Config, error) {
	if IsLocal() {
		// Missing .env is fine, exported variables still apply.
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading configuration from environment: %w", err)
	}
	return &cfg, nil
}

// LoginHost is the OAuth token host: the production login endpoint when the
// deployment targets a production org, otherwise the instance host itself
// (sandbox orgs authenticate against their own domain).
func (c *Config) LoginHost() string {
	if c.Production {
		return productionLoginHost
	}
	return c.Host
}

// NamespacePrefix returns the managed-package prefix for custom object and
// field names. An empty or "-" namespace means the objects are unpackaged.
func (c *Config) NamespacePrefix() string {
	ns := strings.TrimSpace(c.Namespace)
	if ns == "" || ns == "-" {
		return ""
	}
	return ns + "__"
}

// IsLocal reports whether the process runs outside Lambda.
func IsLocal() bool {
	isLocal, _ := strconv.ParseBool(os.Getenv("IS_LOCAL"))
	return isLocal
}
