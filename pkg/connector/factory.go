// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/schema-recon/pkg/config"
)

// ConnectorFactory creates database connectors
type ConnectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.Config, logger *zap.Logger) *ConnectorFactory {
	return &ConnectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateConnector creates a connector for a single endpoint based on its driver
func (f *ConnectorFactory) CreateConnector(ctx context.Context, endpoint *config.EndpointConfig) (DatabaseConnector, error) {
	f.logger.Info("Creating connector",
		zap.String("endpoint", endpoint.Name),
		zap.String("driver", endpoint.Driver))

	var (
		conn DatabaseConnector
		err  error
	)

	switch endpoint.Driver {
	case config.DriverSnowflake:
		conn, err = NewSnowflakeConnector(ctx, endpoint.Snowflake)
	case config.DriverPostgres:
		conn, err = NewPostgresConnector(ctx, endpoint.Postgres)
	case config.DriverMySQL:
		conn, err = NewMySQLConnector(ctx, endpoint.MySQL)
	case config.DriverSQLServer:
		conn, err = NewSQLServerConnector(ctx, endpoint.SQLServer)
	case config.DriverOracle:
		conn, err = NewOracleConnector(ctx, endpoint.Oracle)
	case config.DriverDB2:
		conn, err = NewDB2Connector(ctx, endpoint.DB2)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", endpoint.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s connector for %s endpoint: %w",
			endpoint.Driver, endpoint.Name, err)
	}

	return conn, nil
}

// CreateSourceConnector creates a connector for the source endpoint
func (f *ConnectorFactory) CreateSourceConnector(ctx context.Context) (DatabaseConnector, error) {
	return f.CreateConnector(ctx, f.cfg.Source)
}

// CreateTargetConnector creates a connector for the target endpoint
func (f *ConnectorFactory) CreateTargetConnector(ctx context.Context) (DatabaseConnector, error) {
	return f.CreateConnector(ctx, f.cfg.Target)
}

// CreateEndpointConnectors creates both source and target connectors
func (f *ConnectorFactory) CreateEndpointConnectors(ctx context.Context) (DatabaseConnector, DatabaseConnector, error) {
	srcConn, err := f.CreateSourceConnector(ctx)
	if err != nil {
		return nil, nil, err
	}

	tgtConn, err := f.CreateTargetConnector(ctx)
	if err != nil {
		srcConn.Close() // Clean up the source connection if the target fails
		return nil, nil, err
	}

	return srcConn, tgtConn, nil
}
