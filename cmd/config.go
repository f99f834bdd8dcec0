package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/David-Botos/schema-recon/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the resolved configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration, passwords omitted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		printEndpoint(cfg.Source)
		printEndpoint(cfg.Target)

		excluded := "(audit column defaults)"
		if cfg.ExcludedColumns != nil {
			excluded = strings.Join(cfg.ExcludedColumns, ", ")
		}

		workerCount := "(derived from CPUs)"
		if cfg.WorkerPoolSize > 0 {
			workerCount = fmt.Sprintf("%d", cfg.WorkerPoolSize)
		}

		fmt.Println("run:")
		fmt.Printf("  excluded columns:   %s\n", excluded)
		fmt.Printf("  length tolerance:   %d source vs %d target\n",
			cfg.LengthToleranceSource, cfg.LengthToleranceTarget)
		fmt.Printf("  workers:            %s\n", workerCount)
		fmt.Printf("  strict duplicates:  %t\n", cfg.StrictDuplicates)
		fmt.Printf("  fail fast:          %t\n", cfg.FailFast)
		fmt.Printf("  log:                %s / %s\n", cfg.LogLevel, cfg.LogFormat)

		return nil
	},
}

func printEndpoint(endpoint *config.EndpointConfig) {
	fmt.Printf("%s:\n", endpoint.Name)
	fmt.Printf("  driver:             %s\n", endpoint.Driver)
	if endpoint.Catalog != "" {
		fmt.Printf("  catalog:            %s\n", endpoint.Catalog)
	}
	fmt.Printf("  schema:             %s\n", endpoint.Schema)

	switch endpoint.Driver {
	case config.DriverSnowflake:
		fmt.Printf("  account:            %s\n", endpoint.Snowflake.Account)
		fmt.Printf("  user:               %s\n", endpoint.Snowflake.User)
		fmt.Printf("  warehouse:          %s\n", endpoint.Snowflake.Warehouse)
		fmt.Printf("  database:           %s\n", endpoint.Snowflake.Database)
		if endpoint.Snowflake.Role != "" {
			fmt.Printf("  role:               %s\n", endpoint.Snowflake.Role)
		}
	case config.DriverPostgres:
		fmt.Printf("  host:               %s:%d\n", endpoint.Postgres.Host, endpoint.Postgres.Port)
		fmt.Printf("  user:               %s\n", endpoint.Postgres.User)
		fmt.Printf("  database:           %s\n", endpoint.Postgres.Database)
		fmt.Printf("  sslmode:            %s\n", endpoint.Postgres.SSLMode)
	case config.DriverMySQL:
		fmt.Printf("  host:               %s:%d\n", endpoint.MySQL.Host, endpoint.MySQL.Port)
		fmt.Printf("  user:               %s\n", endpoint.MySQL.User)
		fmt.Printf("  database:           %s\n", endpoint.MySQL.Database)
	case config.DriverSQLServer:
		fmt.Printf("  host:               %s:%d\n", endpoint.SQLServer.Host, endpoint.SQLServer.Port)
		fmt.Printf("  user:               %s\n", endpoint.SQLServer.User)
		fmt.Printf("  database:           %s\n", endpoint.SQLServer.Database)
		fmt.Printf("  encrypt:            %s\n", endpoint.SQLServer.Encrypt)
	case config.DriverOracle:
		fmt.Printf("  host:               %s:%d\n", endpoint.Oracle.Host, endpoint.Oracle.Port)
		fmt.Printf("  user:               %s\n", endpoint.Oracle.User)
		fmt.Printf("  service:            %s\n", endpoint.Oracle.Service)
	case config.DriverDB2:
		fmt.Printf("  host:               %s:%d\n", endpoint.DB2.Host, endpoint.DB2.Port)
		fmt.Printf("  user:               %s\n", endpoint.DB2.User)
		fmt.Printf("  database:           %s\n", endpoint.DB2.Database)
	}
}

func init() {
	configCmd.AddCommand(configShowCmd)
	RootCmd.AddCommand(configCmd)
}
