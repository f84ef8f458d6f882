package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/strata-db/strata/pkg/config"
)

const configTemplate = `# strata configuration
database:
  # sqlite, mysql, or postgres
  dialect: sqlite
  dsn: file:./strata.db
  # auth_token is substituted into ${auth_token} placeholders in the DSN.
  # Prefer setting STRATA_AUTH_TOKEN in the environment.
  # auth_token: ""

pool:
  min_connections: 1
  max_connections: 10
  connection_timeout: 30s
  retry_interval: 5s
  max_retries: 3

server:
  host: localhost
  port: 4000

log:
  level: info
  development: false
`

// Init scaffolds a new strata project directory.
func Init(dir string) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}

	configPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", config.FileName)
	}

	if err := os.WriteFile(configPath, []byte(configTemplate), 0644); err != nil {
		return err
	}
	fmt.Printf("✓ Created %s\n", configPath)

	fmt.Println("\n🎉 strata project initialized!")
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Point database.dsn at your database")
	fmt.Println("  2. Run 'strata status' to verify connectivity")
	fmt.Println("  3. Run 'strata serve' to start the tool server")
	return nil
}
