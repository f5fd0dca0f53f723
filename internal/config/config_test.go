package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vn.io.arda/rolesync/internal/config"
)

const minimalConfig = `okta:
  org_url: https://acme.okta.com
  api_token: file-token
crdb:
  url: postgresql://roleadmin@localhost:26257/defaultdb
mappings:
  - okta_group: db-admins
    crdb_role: admin
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rolesync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "https://acme.okta.com", cfg.Okta.OrgURL)
	assert.Equal(t, "file-token", cfg.Okta.APIToken)
	assert.Equal(t, 200, cfg.Okta.PageSize)
	assert.True(t, cfg.CRDB.EnsureSQLUsers)
	assert.True(t, cfg.CRDB.EnsureRoles)
	assert.False(t, cfg.CRDB.EnforceRemovals)
	assert.Equal(t, "^(.*)$", cfg.IdentityMap.Pattern)
	assert.Equal(t, "$1", cfg.IdentityMap.Replacement)
	assert.Equal(t, ":8090", cfg.Serve.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Serve.Interval)
	assert.Equal(t, "rolesync.outcomes", cfg.Kafka.Topic)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "info", cfg.Log.Level)
	require.Len(t, cfg.Mappings, 1)
	assert.Equal(t, "db-admins", cfg.Mappings[0].OktaGroup)
	assert.Equal(t, "admin", cfg.Mappings[0].CRDBRole)
}

func TestLoadEnvTokenOverridesFile(t *testing.T) {
	t.Setenv("OKTA_API_TOKEN", "env-token")

	cfg, err := config.Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Okta.APIToken)
}

func TestLoadPrefixedEnvOverrides(t *testing.T) {
	t.Setenv("ROLESYNC_CRDB_URL", "postgresql://env@crdb:26257/defaultdb")

	cfg, err := config.Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	assert.Equal(t, "postgresql://env@crdb:26257/defaultdb", cfg.CRDB.URL)
}

func TestLoadParsesDurations(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, minimalConfig+`serve:
  interval: 90s
`))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Serve.Interval)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func validConfig() *config.Config {
	return &config.Config{
		Okta:        config.OktaConfig{OrgURL: "https://acme.okta.com", APIToken: "tok", PageSize: 200},
		CRDB:        config.CRDBConfig{URL: "postgresql://roleadmin@localhost:26257/defaultdb"},
		IdentityMap: config.IdentityMap{Pattern: "^(.*)$", Replacement: "$1"},
		Mappings:    []config.Mapping{{OktaGroup: "db-admins", CRDBRole: "admin"}},
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"valid", func(c *config.Config) {}, ""},
		{"missing org url", func(c *config.Config) { c.Okta.OrgURL = "" }, "org_url"},
		{"missing token", func(c *config.Config) { c.Okta.APIToken = "" }, "token"},
		{"placeholder token", func(c *config.Config) { c.Okta.APIToken = "${OKTA_API_TOKEN}" }, "token"},
		{"missing crdb url", func(c *config.Config) { c.CRDB.URL = "" }, "crdb.url"},
		{"no mappings", func(c *config.Config) { c.Mappings = nil }, "mapping"},
		{"incomplete mapping", func(c *config.Config) { c.Mappings[0].CRDBRole = "" }, "mappings[0]"},
		{"invalid pattern", func(c *config.Config) { c.IdentityMap.Pattern = "[unclosed" }, "identity_map.pattern"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
