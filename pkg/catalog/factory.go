package catalog

import (
	"fmt"

	"github.com/David-Botos/schema-recon/pkg/config"
	"github.com/David-Botos/schema-recon/pkg/connector"
)

// NewSource returns the metadata source matching an endpoint's driver,
// reading through the given connection.
func NewSource(endpoint *config.EndpointConfig, conn connector.DatabaseConnector) (MetadataSource, error) {
	switch endpoint.Driver {
	case config.DriverSnowflake:
		return NewSnowflakeSource(conn, endpoint.Snowflake.QueryTimeout), nil
	case config.DriverPostgres:
		return NewPostgresSource(conn, endpoint.Postgres.StatementTimeout), nil
	case config.DriverMySQL:
		return NewMySQLSource(conn, endpoint.MySQL.QueryTimeout), nil
	case config.DriverSQLServer:
		return NewSQLServerSource(conn, endpoint.SQLServer.QueryTimeout), nil
	case config.DriverOracle:
		return NewOracleSource(conn, endpoint.Oracle.QueryTimeout), nil
	case config.DriverDB2:
		return NewDB2Source(conn, endpoint.DB2.QueryTimeout), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", endpoint.Driver)
	}
}
