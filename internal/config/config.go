package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all rolesync configuration.
type Config struct {
	Okta        OktaConfig  `mapstructure:"okta"`
	CRDB        CRDBConfig  `mapstructure:"crdb"`
	IdentityMap IdentityMap `mapstructure:"identity_map"`
	Mappings    []Mapping   `mapstructure:"mappings"`
	Serve       ServeConfig `mapstructure:"serve"`
	Kafka       KafkaConfig `mapstructure:"kafka"`
	Log         LogConfig   `mapstructure:"log"`
}

type OktaConfig struct {
	OrgURL string `mapstructure:"org_url"`
	// APIToken is usually left empty in the file and supplied through the
	// OKTA_API_TOKEN environment variable.
	APIToken string `mapstructure:"api_token"`
	PageSize int    `mapstructure:"page_size"`
}

type CRDBConfig struct {
	URL             string `mapstructure:"url"`
	EnsureSQLUsers  bool   `mapstructure:"ensure_sql_users"`
	EnsureRoles     bool   `mapstructure:"ensure_roles"`
	EnforceRemovals bool   `mapstructure:"enforce_removals"`
}

// IdentityMap is the rule that turns member emails into SQL usernames.
type IdentityMap struct {
	Pattern     string `mapstructure:"pattern"`
	Replacement string `mapstructure:"replacement"`
}

// Mapping pairs an Okta group display name with a CockroachDB role.
type Mapping struct {
	OktaGroup string `mapstructure:"okta_group"`
	CRDBRole  string `mapstructure:"crdb_role"`
}

// ServeConfig applies to daemon mode only.
type ServeConfig struct {
	Addr     string        `mapstructure:"addr"`
	Interval time.Duration `mapstructure:"interval"`
	// AuthToken, when set, gates the report endpoint behind a bearer token.
	AuthToken string `mapstructure:"auth_token"`
}

// KafkaConfig enables outcome publishing when brokers are set.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from the given file plus environment overrides.
// Environment variables use the ROLESYNC_ prefix with dots replaced by
// underscores (ROLESYNC_CRDB_URL); the bare OKTA_API_TOKEN variable always
// overrides the file token.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("okta.page_size", 200)
	v.SetDefault("crdb.ensure_sql_users", true)
	v.SetDefault("crdb.ensure_roles", true)
	v.SetDefault("crdb.enforce_removals", false)
	v.SetDefault("identity_map.pattern", "^(.*)$")
	v.SetDefault("identity_map.replacement", "$1")
	v.SetDefault("serve.addr", ":8090")
	v.SetDefault("serve.interval", "5m")
	v.SetDefault("kafka.topic", "rolesync.outcomes")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("ROLESYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("okta.api_token", "OKTA_API_TOKEN")

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate runs the pre-flight checks that must pass before any network call
// is made.
func (c *Config) Validate() error {
	if c.Okta.OrgURL == "" {
		return fmt.Errorf("okta.org_url is required")
	}
	if c.Okta.APIToken == "" || strings.HasPrefix(c.Okta.APIToken, "${") {
		return fmt.Errorf("okta API token is not set: export OKTA_API_TOKEN or set okta.api_token")
	}
	if c.CRDB.URL == "" {
		return fmt.Errorf("crdb.url is required")
	}
	if len(c.Mappings) == 0 {
		return fmt.Errorf("at least one mapping is required")
	}
	for i, m := range c.Mappings {
		if m.OktaGroup == "" || m.CRDBRole == "" {
			return fmt.Errorf("mappings[%d]: okta_group and crdb_role are both required", i)
		}
	}
	if _, err := regexp.Compile(c.IdentityMap.Pattern); err != nil {
		return fmt.Errorf("identity_map.pattern: %w", err)
	}
	return nil
}
