package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/florelab/floradb/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "floradb",
	Short: "Garden database server and simulation tools",
	Long: `FloraDB keeps gardens of growing flowers behind an HTTP API: catalogs
declare the species a garden accepts, flowers are planted, grown and
withered against them, and every change streams out to webhook and
websocket notifiers. The same engine powers a headless simulator and
a terminal watcher.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/floradb/floradb.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("floradb")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/floradb")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("FLORADB")
	// Replace dots with underscores for nested keys in env vars
	// e.g., FLORADB_SERVER_ADDR for server.addr
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
