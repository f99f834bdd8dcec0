// pkg/connector/db2.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/schema-recon/pkg/config"
)

// Driver registration requires a cgo build with the IBM clidriver
// installed; restore `_ "github.com/ibmdb/go_ibm_db"` in such builds.
// Without it sql.Open below fails at runtime with "unknown driver".

// DB2Connector implements the DatabaseConnector interface for Db2
type DB2Connector struct {
	db     *sql.DB
	logger *zap.Logger
	cfg    *config.DB2Config
}

var _ DatabaseConnector = (*DB2Connector)(nil)

// NewDB2Connector creates and initializes a new Db2 connector
func NewDB2Connector(ctx context.Context, cfg *config.DB2Config) (*DB2Connector, error) {
	logger := zap.L().Named("db2-connector")

	// Log connection attempt
	logger.Info("Connecting to Db2",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	// Open database connection
	db, err := sql.Open("go_ibm_db", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Db2 connection: %w", err)
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
		return nil, fmt.Errorf("failed to connect to Db2: %w", err)
	}

	connector := &DB2Connector{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}

	LogPoolStats(logger, cfg.Database, db)
	return connector, nil
}

// DB returns the underlying database connection
func (c *DB2Connector) DB() *sql.DB {
	return c.db
}

// Validate verifies the Db2 connection and current server
func (c *DB2Connector) Validate() error {
	var server string
	err := c.db.QueryRow("SELECT CURRENT SERVER FROM SYSIBM.SYSDUMMY1").Scan(&server)
	if err != nil {
		return fmt.Errorf("failed to verify Db2 access: %w", err)
	}

	c.logger.Info("Connected to Db2",
		zap.String("server", server),
		zap.String("database", c.cfg.Database))

	return nil
}

// Close closes the database connection
func (c *DB2Connector) Close() error {
	c.logger.Info("Closing Db2 connection")
	LogPoolStats(c.logger, c.cfg.Database, c.db)
	return c.db.Close()
}

// QueryWithTimeout executes a query with a timeout. The timeout covers
// reading the returned rows as well.
func (c *DB2Connector) QueryWithTimeout(
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

