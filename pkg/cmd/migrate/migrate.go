package migrate

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/motorsport-analytics/log"
	"github.com/mpapenbr/motorsport-analytics/pkg/cmd/util"
	"github.com/mpapenbr/motorsport-analytics/pkg/config"
	dbmigrate "github.com/mpapenbr/motorsport-analytics/pkg/db/migrate"
	"github.com/mpapenbr/motorsport-analytics/pkg/utils"
)

var ErrMissingDB = errors.New("migrate requires --db")

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration",
		Long: `Creates or updates the tables for the catalog and the postgres result cache.
The migrations shipped with the binary are used unless a source url is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return startMigration()
		},
	}

	cmd.Flags().StringVarP(&config.MigrationSourceURL,
		"migration-source-url",
		"m",
		"",
		"url to migration files (e.g. file:///migrations)")

	return cmd
}

func startMigration() error {
	if _, err := util.SetupLogger(); err != nil {
		return err
	}
	if config.DB == "" {
		return ErrMissingDB
	}
	timeout := util.ParseDuration("wait-for-services", config.WaitForServices, 60*time.Second)
	if err := utils.WaitForTCP(utils.ExtractFromDBURL(config.DB), timeout); err != nil {
		log.Error("database not ready", log.ErrorField(err))
		return err
	}

	var err error
	if config.MigrationSourceURL == "" {
		log.Info("Using embedded migrations")
		err = dbmigrate.MigrateDb(config.DB)
	} else {
		log.Info("Using migrations files at", log.String("source", config.MigrationSourceURL))
		err = dbmigrate.MigrateDbFromSource(config.MigrationSourceURL, config.DB)
	}
	if err != nil {
		log.Error("Migration failed", log.ErrorField(err))
		return err
	}
	log.Info("Database is up to date")
	return nil
}
