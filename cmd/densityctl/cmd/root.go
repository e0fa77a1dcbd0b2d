package cmd

import (
	"os"

	"github.com/apex/log"
	"github.com/materials-commons/partdensity/pkg/clog"
	"github.com/materials-commons/partdensity/pkg/config"
	"github.com/materials-commons/partdensity/pkg/densityclient"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	server  string
	client  *densityclient.Client
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "densityctl",
	Short: "Command line client for densityd",
	Long: `densityctl runs density calculations against a densityd server. The
server address comes from --server, DENSITYCTL_SERVER, or the densityctl_server
key of the config file (default $HOME/.densityctl.yaml).`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = clog.Setup(os.Stderr, "warn")

		c := config.NewViperConfig(cfgFile)
		c.SetDefault("DENSITYCTL_SERVER", "http://localhost:1362")
		if err := c.Load(); err != nil && cmd.Flags().Changed("config") {
			log.Fatalf("Unable to read config file %s: %s", cfgFile, err)
		}

		if server == "" {
			server = c.GetKey("DENSITYCTL_SERVER")
		}
		client = densityclient.New(server)
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

func init() {
	defaultPath, _ := config.DefaultViperConfigPath(".densityctl")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", defaultPath, "config file")
	rootCmd.PersistentFlags().StringVar(&server, "server", "", "densityd base URL")
}
