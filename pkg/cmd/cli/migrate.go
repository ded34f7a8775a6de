package cli

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/nsyszr/flowpilot/config"
	"github.com/nsyszr/flowpilot/pkg/storage/migrations"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	// SQL drivers
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type MigrateHandler struct {
	c *config.Config
}

func newMigrateHandler(c *config.Config) *MigrateHandler {
	return &MigrateHandler{c: c}
}

func getDatabaseURL(cmd *cobra.Command, args []string, position int) (url string) {
	if len(args) <= position {
		fmt.Println(cmd.UsageString())
		return
	}
	url = args[position]

	if url == "" {
		fmt.Println(cmd.UsageString())
		return
	}
	return
}

// sqlDriver maps the --driver flag to the database/sql driver name and the
// sql-migrate dialect.
func sqlDriver(name string) (driver, dialect string, err error) {
	switch name {
	case "", "postgres":
		return "postgres", migrations.DialectPostgres, nil
	case "sqlite":
		return "sqlite", migrations.DialectSQLite, nil
	}
	return "", "", fmt.Errorf("unsupported driver '%s'", name)
}

func (h *MigrateHandler) MigrateSQL(cmd *cobra.Command, args []string) {
	url := getDatabaseURL(cmd, args, 0)
	if url == "" {
		os.Exit(2) // Return missing keyword or command
	}

	setupLogging(log.DebugLevel)

	name, _ := cmd.Flags().GetString("driver")
	driver, dialect, err := sqlDriver(name)
	if err != nil {
		log.Error(err)
		os.Exit(2)
	}

	log.Infof("Applying SQL migration for %s...", name)

	db, err := sqlx.Open(driver, url)
	if err != nil {
		log.Errorf("An error occurred while connecting to SQL: %s", err)
		os.Exit(1)
	}
	defer db.Close()

	// Check the database connection
	if err := db.Ping(); err != nil {
		log.Errorf("An error occurred while connecting to SQL: %s", err)
		os.Exit(1)
	}

	n, err := migrations.Up(db.DB, dialect)
	if err != nil {
		log.Errorf("An error occurred while running the migrations: %s", err)
		os.Exit(1)
	}
	log.Infof("Migration successful! Applied a total of %d migrations.", n)
}
