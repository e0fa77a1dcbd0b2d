package cmd

import (
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/materials-commons/partdensity/pkg/seed"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed [seed.yaml]",
	Short: "Load elements and standard alloys through the API",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f := seed.Defaults()
		if len(args) == 1 {
			r, err := os.Open(args[0])
			if err != nil {
				log.Fatalf("Unable to open seed file: %s", err)
			}

			f, err = seed.Parse(r)
			_ = r.Close()
			if err != nil {
				log.Fatalf("Unable to read seed file %s: %s", args[0], err)
			}
		}

		summary, err := seed.Apply(client, f)
		if err != nil {
			log.Fatalf("Seeding failed: %s", err)
		}

		fmt.Printf("Elements: %d created, %d updated. Alloys: %d created, %d updated.\n",
			summary.ElementsCreated, summary.ElementsUpdated, summary.AlloysCreated, summary.AlloysUpdated)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
