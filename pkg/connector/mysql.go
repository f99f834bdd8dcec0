// pkg/connector/mysql.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/David-Botos/schema-recon/pkg/config"
)

// MySQLConnector implements the DatabaseConnector interface for MySQL
type MySQLConnector struct {
	db     *sql.DB
	logger *zap.Logger
	cfg    *config.MySQLConfig
}

var _ DatabaseConnector = (*MySQLConnector)(nil)

// NewMySQLConnector creates and initializes a new MySQL connector
func NewMySQLConnector(ctx context.Context, cfg *config.MySQLConfig) (*MySQLConnector, error) {
	logger := zap.L().Named("mysql-connector")

	// Log connection attempt
	logger.Info("Connecting to MySQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	// Open database connection
	db, err := sql.Open("mysql", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MySQL connection: %w", err)
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
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	connector := &MySQLConnector{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}

	LogPoolStats(logger, cfg.Database, db)
	return connector, nil
}

// DB returns the underlying database connection
func (c *MySQLConnector) DB() *sql.DB {
	return c.db
}

// Validate verifies the MySQL connection and selected database
func (c *MySQLConnector) Validate() error {
	var version string
	var database sql.NullString
	err := c.db.QueryRow("SELECT VERSION(), DATABASE()").Scan(&version, &database)
	if err != nil {
		return fmt.Errorf("failed to verify MySQL access: %w", err)
	}

	c.logger.Info("Connected to MySQL",
		zap.String("version", version),
		zap.String("database", database.String))

	if database.String != c.cfg.Database {
		return fmt.Errorf("connected to wrong database: %s (expected: %s)",
			database.String, c.cfg.Database)
	}

	return nil
}

// Close closes the database connection
func (c *MySQLConnector) Close() error {
	c.logger.Info("Closing MySQL connection")
	LogPoolStats(c.logger, c.cfg.Database, c.db)
	return c.db.Close()
}

// QueryWithTimeout executes a query with a timeout. The timeout covers
// reading the returned rows as well.
func (c *MySQLConnector) QueryWithTimeout(
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

