package cmd

import (
	"os"

	"github.com/apex/log"
	"github.com/materials-commons/partdensity/pkg/clog"
	"github.com/materials-commons/partdensity/pkg/config"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "densityd",
	Short: "Part density calculation server",
	Long: `densityd stores parts, elements and standard alloys and computes
theoretical density, measured density, compactness and porosity for
parts and whole production lots over a JSON API.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		c := config.MustLoadFromDotenv()
		if err := clog.Setup(os.Stdout, c.GetKey("DENSITYD_LOG_LEVEL")); err != nil {
			log.Fatalf("Invalid DENSITYD_LOG_LEVEL: %s", err)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
