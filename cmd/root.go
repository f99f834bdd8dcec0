package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	logger *zap.Logger
)

var RootCmd = &cobra.Command{
	Use:   "schema-recon",
	Short: "Column-level schema reconciliation between two database endpoints",
	Long: `schema-recon lists the tables and columns of a source and a target
database endpoint, aligns them by name, compares the declared column
attributes, and reports every column with at least one mismatch.

Endpoints are configured through SOURCE_* and TARGET_* environment
variables. Snowflake, PostgreSQL, MySQL, SQL Server, Oracle and DB2
are supported on either side.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},
}

// Execute runs the root command
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./schema-recon.yaml)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	RootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: json or console")

	viper.BindPFlag("log.level", RootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", RootCmd.PersistentFlags().Lookup("log-format"))

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("schema-recon")
		viper.SetConfigType("yaml")
	}

	// log.level resolves from LOG_LEVEL and so on
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// initLogger builds the process-wide zap logger from the resolved settings
func initLogger() error {
	level, err := zapcore.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", viper.GetString("log.level"), err)
	}

	var zapCfg zap.Config
	if viper.GetString("log.format") == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err = zapCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	// Named loggers throughout the connectors read the global.
	zap.ReplaceGlobals(logger)

	return nil
}
