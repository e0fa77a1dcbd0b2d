package cmd

import (
	"github.com/apex/log"
	"github.com/materials-commons/partdensity/pkg/config"
	"github.com/materials-commons/partdensity/pkg/densdb"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	Run: func(cmd *cobra.Command, args []string) {
		db := densdb.MustConnectToDB(config.GetConfig())
		if err := densdb.RunMigrations(db); err != nil {
			log.Fatalf("Unable to migrate database: %s", err)
		}
		log.Infof("Database migrated")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
