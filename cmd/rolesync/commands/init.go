package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initForce bool

const sampleConfig = `okta:
  org_url: https://your-org.okta.com
  # Prefer the OKTA_API_TOKEN environment variable over embedding a token here.
  api_token: ""
  page_size: 200

crdb:
  url: postgresql://roleadmin@localhost:26257/defaultdb?sslmode=verify-full
  ensure_sql_users: true
  ensure_roles: true
  # Revokes are opt-in: with false, members outside Okta are left alone.
  enforce_removals: false

identity_map:
  # Go regular expression, matched from the start of each member email.
  pattern: "^(.+)@example\\.com$"
  # Replacement template in Go regexp expansion syntax ($1, ${name}).
  replacement: "$1"

mappings:
  - okta_group: db-admins
    crdb_role: admin_role
  - okta_group: db-readers
    crdb_role: read_only

# Daemon mode (rolesync serve) only.
serve:
  addr: ":8090"
  interval: 5m
  # When set, GET /report requires "Authorization: Bearer <auth_token>".
  auth_token: ""

# Optional: publish one event per reconciled mapping to Kafka.
kafka:
  brokers: []
  topic: rolesync.outcomes

log:
  level: info
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample configuration file",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing configuration file")
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgFile); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile)
	}
	if err := os.WriteFile(cfgFile, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Configuration written to %s\n", cfgFile)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Edit the mappings and connection settings")
	fmt.Println("  2. export OKTA_API_TOKEN=<your token>")
	fmt.Println("  3. Preview with: rolesync sync --dry-run")
	return nil
}
