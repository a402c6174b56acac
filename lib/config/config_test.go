package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("SF_VERSION", "v56.0")
	t.Setenv("SF_HOST", "https://acme.my.salesforce.com")
	t.Setenv("SF_USERNAME", "integration@acme.example")
	t.Setenv("SF_PRODUCTION", "true")
	t.Setenv("SF_CREDENTIALS_SECRETS_MANAGER_ARN", "arn:aws:secretsmanager:us-east-1:123:secret:sf-creds")
	t.Setenv("SF_ADAPTER_NAMESPACE", "amazonconnect")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "v56.0", cfg.APIVersion)
	assert.True(t, cfg.Production)
	assert.Equal(t, "https://login.salesforce.com", cfg.LoginHost())
	assert.Equal(t, "amazonconnect__", cfg.NamespacePrefix())
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("SF_VERSION", "v56.0")
	for _, name := range []string{"SF_HOST", "SF_USERNAME", "SF_CREDENTIALS_SECRETS_MANAGER_ARN"} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}

	_, err := Load()
	assert.Error(t, err)
}

func TestLoginHostSandbox(t *testing.T) {
	cfg := &Config{Host: "https://acme--uat.sandbox.my.salesforce.com", Production: false}
	assert.Equal(t, cfg.Host, cfg.LoginHost())
}

func TestNamespacePrefix(t *testing.T) {
	assert.Equal(t, "", (&Config{Namespace: ""}).NamespacePrefix())
	assert.Equal(t, "", (&Config{Namespace: "-"}).NamespacePrefix())
	assert.Equal(t, "vendor__", (&Config{Namespace: "vendor"}).NamespacePrefix())
}
