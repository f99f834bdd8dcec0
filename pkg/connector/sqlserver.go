// pkg/connector/sqlserver.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/microsoft/go-mssqldb"
	"go.uber.org/zap"

	"github.com/David-Botos/schema-recon/pkg/config"
)

// SQLServerConnector implements the DatabaseConnector interface for SQL Server
type SQLServerConnector struct {
	db     *sql.DB
	logger *zap.Logger
	cfg    *config.SQLServerConfig
}

var _ DatabaseConnector = (*SQLServerConnector)(nil)

// NewSQLServerConnector creates and initializes a new SQL Server connector
func NewSQLServerConnector(ctx context.Context, cfg *config.SQLServerConfig) (*SQLServerConnector, error) {
	logger := zap.L().Named("sqlserver-connector")

	// Log connection attempt
	logger.Info("Connecting to SQL Server",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	// Open database connection
	db, err := sql.Open("sqlserver", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQL Server connection: %w", err)
	}

	// Configure connection pool
	ApplyConnectionSettings(
		db,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	// Verify connection
	if err := PingWithTimeout(ctx, db, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to SQL Server: %w", err)
	}

	connector := &SQLServerConnector{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}

	LogPoolStats(logger, cfg.Database, db)
	return connector, nil
}

// DB returns the underlying database connection
func (c *SQLServerConnector) DB() *sql.DB {
	return c.db
}

// Validate verifies the SQL Server connection and selected database
func (c *SQLServerConnector) Validate() error {
	var version, database string
	err := c.db.QueryRow("SELECT @@VERSION, DB_NAME()").Scan(&version, &database)
	if err != nil {
		return fmt.Errorf("failed to verify SQL Server access: %w", err)
	}

	c.logger.Info("Connected to SQL Server",
		zap.String("version", version),
		zap.String("database", database))

	return nil
}

// Close closes the database connection
func (c *SQLServerConnector) Close() error {
	c.logger.Info("Closing SQL Server connection")
	LogPoolStats(c.logger, c.cfg.Database, c.db)
	return c.db.Close()
}

// QueryWithTimeout executes a query with a timeout. The timeout covers
// reading the returned rows as well.
func (c *SQLServerConnector) QueryWithTimeout(
	ctx context.Context,
	query string,
	timeout time.Duration,
	args ...interface{},
) (*sql.Rows, error) {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	rows, err := c.db.QueryContext(queryCtx, query, args...)
	if err != nil {
		cancel()
		return nil, err
	}

	// Release the timer once it fires or the parent context ends.
	go func() {
		<-queryCtx.Done()
		cancel()
	}()

	return rows, nil
}

