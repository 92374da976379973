package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	analyzeCmd "github.com/mpapenbr/motorsport-analytics/pkg/cmd/analyze"
	migrateCmd "github.com/mpapenbr/motorsport-analytics/pkg/cmd/migrate"
	serveCmd "github.com/mpapenbr/motorsport-analytics/pkg/cmd/serve"
	"github.com/mpapenbr/motorsport-analytics/pkg/config"
	"github.com/mpapenbr/motorsport-analytics/version"
)

const envPrefix = "MSA"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "msa",
	Short:   "Analytics backend for motorsport timing and telemetry data",
	Long:    ``,
	Version: version.FullVersion,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:funlen // flag definitions
func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.msa.yml)")

	rootCmd.PersistentFlags().StringVar(&config.DB, "db",
		"",
		"Connection string for the database (enables catalog and postgres cache store)")
	rootCmd.PersistentFlags().StringVar(&config.CacheStore, "cache-store",
		"memory",
		"result cache store (memory, postgres, redis, nats, sqlite)")
	rootCmd.PersistentFlags().StringVar(&config.CachePrefix, "cache-prefix",
		"",
		"key prefix used by redis and nats cache stores")
	rootCmd.PersistentFlags().StringVar(&config.RedisURL, "redis-url",
		"redis://localhost:6379/0",
		"URL of the redis server")
	rootCmd.PersistentFlags().StringVar(&config.NatsURL, "nats-url",
		"nats://localhost:4222",
		"URL of the NATS server")
	rootCmd.PersistentFlags().StringVar(&config.SqliteFile, "sqlite-file",
		"data/msa-cache.db",
		"sqlite database file")
	rootCmd.PersistentFlags().StringVar(&config.ArchiveDir, "archive-dir",
		"data/sessions",
		"root directory of the exported session archives")
	rootCmd.PersistentFlags().StringVar(&config.SessionTTL, "session-ttl",
		"10m",
		"duration a loaded session is kept in memory (0 disables)")
	rootCmd.PersistentFlags().StringVar(&config.WaitForServices,
		"wait-for-services",
		"15s",
		"Duration to wait for other services to be ready")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&config.LogFormat,
		"log-format",
		"json",
		"controls the log output format (json, text)")
	rootCmd.PersistentFlags().StringVar(&config.LogFilter,
		"log-filter",
		"",
		"zapfilter rules for named loggers, e.g. 'debug:analytics* info:*'")
	rootCmd.PersistentFlags().StringVar(&config.LogConfig,
		"log-config",
		"",
		"path to a yaml log config (overrides the other log flags)")

	// add commands here
	rootCmd.AddCommand(serveCmd.NewServeCmd())
	rootCmd.AddCommand(migrateCmd.NewMigrateCmd())
	rootCmd.AddCommand(analyzeCmd.NewAnalyzeCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".msa" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".msa")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindFlags(rootCmd, viper.GetViper())
	for _, cmd := range rootCmd.Commands() {
		bindFlags(cmd, viper.GetViper())
	}
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// --cache-store is read from MSA_CACHE_STORE
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could set flag value for %s: %v", f.Name, err)
			}
		}
	})
}
