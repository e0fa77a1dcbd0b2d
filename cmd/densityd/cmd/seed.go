package cmd

import (
	"os"

	"github.com/apex/log"
	"github.com/materials-commons/partdensity/pkg/config"
	"github.com/materials-commons/partdensity/pkg/densdb"
	"github.com/materials-commons/partdensity/pkg/densdb/stor"
	"github.com/materials-commons/partdensity/pkg/registry"
	"github.com/materials-commons/partdensity/pkg/seed"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed [seed.yaml]",
	Short: "Load elements and standard alloys into the database",
	Long: `Load elements and standard alloys from a YAML seed file, or the built-in
set of common elements and alloys when no file is given. Entries that
already exist are updated.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f := seed.Defaults()
		if len(args) == 1 {
			r, err := os.Open(args[0])
			if err != nil {
				log.Fatalf("Unable to open seed file: %s", err)
			}
			defer r.Close()

			if f, err = seed.Parse(r); err != nil {
				log.Fatalf("Unable to read seed file %s: %s", args[0], err)
			}
		}

		db := densdb.MustConnectToDB(config.GetConfig())
		if err := densdb.RunMigrations(db); err != nil {
			log.Fatalf("Unable to migrate database: %s", err)
		}

		summary, err := seed.Apply(registry.NewReferenceData(stor.NewGormStors(db)), f)
		if err != nil {
			log.Fatalf("Seeding failed: %s", err)
		}

		log.Infof("Elements: %d created, %d updated. Alloys: %d created, %d updated.",
			summary.ElementsCreated, summary.ElementsUpdated, summary.AlloysCreated, summary.AlloysUpdated)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
