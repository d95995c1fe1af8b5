package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nexcrm/outreach-gateway/internal/config"
	"github.com/nexcrm/outreach-gateway/internal/db"
	"github.com/spf13/cobra"
)

// migrateCmd rebuilds the MySQL schema from migrations/001_init.sql. It is a
// dev tool: the DDL drops tables first. The ClickHouse events table ships in
// migrations/002_clickhouse.sql and is applied with clickhouse-client.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Rebuild the MySQL schema (dev: DROP & CREATE tables)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		sqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
			PingTimeout:     cfg.MySQL.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer sqlDB.Close()

		sqlPath := filepath.Join("migrations", "001_init.sql")
		ddl, err := os.ReadFile(sqlPath)
		if err != nil {
			return fmt.Errorf("read migration file %s: %w", sqlPath, err)
		}

		// the messages/calls tables reference tenants; order-free apply
		if _, err := sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 0"); err != nil {
			return fmt.Errorf("disable fk checks: %w", err)
		}
		if _, err := sqlDB.Exec(string(ddl)); err != nil {
			_, _ = sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 1")
			return fmt.Errorf("exec migration: %w", err)
		}
		if _, err := sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 1"); err != nil {
			return fmt.Errorf("enable fk checks: %w", err)
		}

		fmt.Printf(">> applied %s\n", sqlPath)
		fmt.Println(">> ClickHouse DDL (migrations/002_clickhouse.sql) is applied separately")
		return nil
	},
}
