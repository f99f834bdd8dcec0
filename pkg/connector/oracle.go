// pkg/connector/oracle.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/sijms/go-ora/v2"
	"go.uber.org/zap"

	"github.com/David-Botos/schema-recon/pkg/config"
)

// OracleConnector implements the DatabaseConnector interface for Oracle
type OracleConnector struct {
	db     *sql.DB
	logger *zap.Logger
	cfg    *config.OracleConfig
}

var _ DatabaseConnector = (*OracleConnector)(nil)

// NewOracleConnector creates and initializes a new Oracle connector
func NewOracleConnector(ctx context.Context, cfg *config.OracleConfig) (*OracleConnector, error) {
	logger := zap.L().Named("oracle-connector")

	// Log connection attempt
	logger.Info("Connecting to Oracle",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("service", cfg.Service),
		zap.String("user", cfg.User))

	// Open database connection
	db, err := sql.Open("oracle", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Oracle connection: %w", err)
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
	if err := PingWithTimeout(ctx, db, 10*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to Oracle: %w", err)
	}

	connector := &OracleConnector{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}

	LogPoolStats(logger, cfg.Service, db)
	return connector, nil
}

// DB returns the underlying database connection
func (c *OracleConnector) DB() *sql.DB {
	return c.db
}

// Validate verifies the Oracle connection and session user
func (c *OracleConnector) Validate() error {
	var user string
	err := c.db.QueryRow("SELECT USER FROM DUAL").Scan(&user)
	if err != nil {
		return fmt.Errorf("failed to verify Oracle access: %w", err)
	}

	c.logger.Info("Connected to Oracle",
		zap.String("user", user),
		zap.String("service", c.cfg.Service))

	return nil
}

// Close closes the database connection
func (c *OracleConnector) Close() error {
	c.logger.Info("Closing Oracle connection")
	LogPoolStats(c.logger, c.cfg.Service, c.db)
	return c.db.Close()
}

// QueryWithTimeout executes a query with a timeout. The timeout covers
// reading the returned rows as well.
func (c *OracleConnector) QueryWithTimeout(
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

