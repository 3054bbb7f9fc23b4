package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rivetship/rivet/internal/config"
	"github.com/rivetship/rivet/pkg/log"
	"github.com/rivetship/rivet/pkg/version"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rivet",
	Short: "Rivet - manifest annotation tooling",
	Long: `Rivet deploys and tracks resources described by manifests. This
tool applies the platform's ownership, provenance and relationship
annotations to a manifest file and reads them back.`,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is specified, display the help
		if len(args) == 0 {
			cmd.Help()
			return
		}
	},
	Version: version.Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rivet/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	viper.SetEnvPrefix("RIVET")
	viper.AutomaticEnv() // read in environment variables that match

	rootCmd.AddCommand(newAnnotateCmd())
	rootCmd.AddCommand(newInspectCmd())
}

// initConfig loads tool configuration and wires the default logger.
func initConfig() {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	cfg = loaded

	level := log.ParseLevel(cfg.Log.Level)
	if verbose {
		level = log.DebugLevel
	}
	opts := []log.Option{log.WithLevel(level)}
	if cfg.Log.Format == "json" {
		opts = append(opts, log.WithJSONFormat())
	}
	log.SetDefaultLogger(log.NewLogger(opts...))
}
