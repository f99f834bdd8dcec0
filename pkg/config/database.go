// pkg/config/database.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	go_ora "github.com/sijms/go-ora/v2"
	"github.com/snowflakedb/gosnowflake"
)

// Supported endpoint drivers
const (
	DriverSnowflake = "snowflake"
	DriverPostgres  = "postgres"
	DriverMySQL     = "mysql"
	DriverSQLServer = "sqlserver"
	DriverOracle    = "oracle"
	DriverDB2       = "db2"
)

// EndpointConfig describes one side of a reconciliation run: which engine
// to talk to, which catalog and schema to enumerate, and the engine-specific
// connection parameters. Exactly one of the engine config fields is non-nil,
// matching Driver.
type EndpointConfig struct {
	Name    string // "source" or "target"
	Driver  string
	Catalog string
	Schema  string

	Snowflake *SnowflakeConfig
	Postgres  *PostgresConfig
	MySQL     *MySQLConfig
	SQLServer *SQLServerConfig
	Oracle    *OracleConfig
	DB2       *DB2Config
}

// SnowflakeConfig holds Snowflake connection parameters
type SnowflakeConfig struct {
	User          string
	Password      string
	Account       string
	Warehouse     string
	Database      string
	Role          string
	Authenticator gosnowflake.AuthType

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Query timeout
	QueryTimeout time.Duration
}

// PostgresConfig holds PostgreSQL connection parameters
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Statement timeout
	StatementTimeout time.Duration
}

// MySQLConfig holds MySQL connection parameters
type MySQLConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Query timeout
	QueryTimeout time.Duration
}

// SQLServerConfig holds SQL Server connection parameters
type SQLServerConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Encrypt  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Query timeout
	QueryTimeout time.Duration
}

// OracleConfig holds Oracle connection parameters
type OracleConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Service  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Query timeout
	QueryTimeout time.Duration
}

// DB2Config holds Db2 connection parameters
type DB2Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Query timeout
	QueryTimeout time.Duration
}

// LoadEndpointConfig loads one endpoint ("source" or "target") from
// environment variables. All keys are prefixed with the upper-cased
// endpoint name, e.g. SOURCE_DRIVER, TARGET_SNOWFLAKE_USER.
func LoadEndpointConfig(name string) (*EndpointConfig, error) {
	prefix := strings.ToUpper(name) + "_"

	cfg := &EndpointConfig{
		Name:    name,
		Driver:  getEnv(prefix+"DRIVER", DriverSnowflake),
		Catalog: os.Getenv(prefix + "CATALOG"),
		Schema:  os.Getenv(prefix + "SCHEMA"),
	}

	switch cfg.Driver {
	case DriverSnowflake:
		sf, err := LoadSnowflakeConfig(prefix)
		if err != nil {
			return nil, err
		}
		// The catalog and the connection database are the same thing in
		// Snowflake; either key may supply it.
		if sf.Database == "" {
			sf.Database = cfg.Catalog
		}
		if cfg.Catalog == "" {
			cfg.Catalog = sf.Database
		}
		if cfg.Catalog == "" {
			return nil, errors.New(prefix + "CATALOG or " + prefix + "SNOWFLAKE_DATABASE environment variable is required")
		}
		cfg.Snowflake = sf

	case DriverPostgres:
		pg, err := LoadPostgresConfig(prefix)
		if err != nil {
			return nil, err
		}
		// PostgreSQL only exposes the connected database through
		// information_schema.
		if cfg.Catalog == "" {
			cfg.Catalog = pg.Database
		}
		cfg.Postgres = pg

	case DriverMySQL:
		my, err := LoadMySQLConfig(prefix)
		if err != nil {
			return nil, err
		}
		// MySQL schemas are databases; either key may supply it.
		if my.Database == "" {
			my.Database = cfg.Schema
		}
		if cfg.Schema == "" {
			cfg.Schema = my.Database
		}
		cfg.MySQL = my

	case DriverSQLServer:
		ms, err := LoadSQLServerConfig(prefix)
		if err != nil {
			return nil, err
		}
		if ms.Database == "" {
			ms.Database = cfg.Catalog
		}
		if cfg.Catalog == "" {
			cfg.Catalog = ms.Database
		}
		if cfg.Catalog == "" {
			return nil, errors.New(prefix + "CATALOG or " + prefix + "SQLSERVER_DATABASE environment variable is required")
		}
		cfg.SQLServer = ms

	case DriverOracle:
		ora, err := LoadOracleConfig(prefix)
		if err != nil {
			return nil, err
		}
		cfg.Oracle = ora

	case DriverDB2:
		db2, err := LoadDB2Config(prefix)
		if err != nil {
			return nil, err
		}
		cfg.DB2 = db2

	default:
		return nil, fmt.Errorf("unsupported driver %q for %s endpoint", cfg.Driver, name)
	}

	if cfg.Schema == "" {
		return nil, errors.New(prefix + "SCHEMA environment variable is required")
	}

	return cfg, nil
}

// LoadSnowflakeConfig loads Snowflake configuration from environment variables
func LoadSnowflakeConfig(prefix string) (*SnowflakeConfig, error) {
	user := os.Getenv(prefix + "SNOWFLAKE_USER")
	if user == "" {
		return nil, errors.New(prefix + "SNOWFLAKE_USER environment variable is required")
	}

	password := os.Getenv(prefix + "SNOWFLAKE_PASSWORD")
	if password == "" {
		return nil, errors.New(prefix + "SNOWFLAKE_PASSWORD environment variable is required")
	}

	account := os.Getenv(prefix + "SNOWFLAKE_ACCOUNT")
	if account == "" {
		return nil, errors.New(prefix + "SNOWFLAKE_ACCOUNT environment variable is required")
	}

	warehouse := os.Getenv(prefix + "SNOWFLAKE_WAREHOUSE")
	if warehouse == "" {
		return nil, errors.New(prefix + "SNOWFLAKE_WAREHOUSE environment variable is required")
	}

	// Convert authenticator string to proper type
	authString := getEnv(prefix+"SNOWFLAKE_AUTHENTICATOR", "snowflake")
	var authenticator gosnowflake.AuthType
	switch authString {
	case "snowflake":
		authenticator = gosnowflake.AuthTypeSnowflake
	case "oauth":
		authenticator = gosnowflake.AuthTypeOAuth
	case "externalbrowser":
		authenticator = gosnowflake.AuthTypeExternalBrowser
	case "username_password_mfa":
		authenticator = gosnowflake.AuthTypeUsernamePasswordMFA
	case "jwt":
		authenticator = gosnowflake.AuthTypeJwt
	case "token":
		authenticator = gosnowflake.AuthTypeTokenAccessor
	case "okta":
		authenticator = gosnowflake.AuthTypeOkta
	default:
		authenticator = gosnowflake.AuthTypeSnowflake
	}

	cfg := &SnowflakeConfig{
		User:          user,
		Password:      password,
		Account:       account,
		Warehouse:     warehouse,
		Database:      getEnv(prefix+"SNOWFLAKE_DATABASE", ""),
		Role:          getEnv(prefix+"SNOWFLAKE_ROLE", ""),
		Authenticator: authenticator,

		MaxOpenConns:    getEnvAsInt(prefix+"SNOWFLAKE_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvAsInt(prefix+"SNOWFLAKE_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: time.Duration(getEnvAsInt(prefix+"SNOWFLAKE_CONN_MAX_LIFETIME_SECONDS", 600)) * time.Second,
		ConnMaxIdleTime: time.Duration(getEnvAsInt(prefix+"SNOWFLAKE_CONN_MAX_IDLE_TIME_SECONDS", 300)) * time.Second,
		QueryTimeout:    time.Duration(getEnvAsInt(prefix+"SNOWFLAKE_QUERY_TIMEOUT_SECONDS", 300)) * time.Second,
	}

	return cfg, nil
}

// LoadPostgresConfig loads PostgreSQL configuration from environment variables
func LoadPostgresConfig(prefix string) (*PostgresConfig, error) {
	user := os.Getenv(prefix + "POSTGRES_USER")
	if user == "" {
		return nil, errors.New(prefix + "POSTGRES_USER environment variable is required")
	}

	password := os.Getenv(prefix + "POSTGRES_PASSWORD")
	if password == "" {
		return nil, errors.New(prefix + "POSTGRES_PASSWORD environment variable is required")
	}

	database := os.Getenv(prefix + "POSTGRES_DB")
	if database == "" {
		return nil, errors.New(prefix + "POSTGRES_DB environment variable is required")
	}

	cfg := &PostgresConfig{
		Host:     getEnv(prefix+"POSTGRES_HOST", "localhost"),
		Port:     getEnvAsInt(prefix+"POSTGRES_PORT", 5432),
		User:     user,
		Password: password,
		Database: database,
		SSLMode:  getEnv(prefix+"POSTGRES_SSLMODE", "disable"),

		MaxOpenConns:     getEnvAsInt(prefix+"POSTGRES_MAX_OPEN_CONNS", 25),
		MaxIdleConns:     getEnvAsInt(prefix+"POSTGRES_MAX_IDLE_CONNS", 10),
		ConnMaxLifetime:  time.Duration(getEnvAsInt(prefix+"POSTGRES_CONN_MAX_LIFETIME_SECONDS", 1800)) * time.Second,
		ConnMaxIdleTime:  time.Duration(getEnvAsInt(prefix+"POSTGRES_CONN_MAX_IDLE_TIME_SECONDS", 600)) * time.Second,
		StatementTimeout: time.Duration(getEnvAsInt(prefix+"POSTGRES_STATEMENT_TIMEOUT_SECONDS", 300)) * time.Second,
	}

	return cfg, nil
}

// LoadMySQLConfig loads MySQL configuration from environment variables
func LoadMySQLConfig(prefix string) (*MySQLConfig, error) {
	user := os.Getenv(prefix + "MYSQL_USER")
	if user == "" {
		return nil, errors.New(prefix + "MYSQL_USER environment variable is required")
	}

	password := os.Getenv(prefix + "MYSQL_PASSWORD")
	if password == "" {
		return nil, errors.New(prefix + "MYSQL_PASSWORD environment variable is required")
	}

	cfg := &MySQLConfig{
		Host:     getEnv(prefix+"MYSQL_HOST", "localhost"),
		Port:     getEnvAsInt(prefix+"MYSQL_PORT", 3306),
		User:     user,
		Password: password,
		Database: getEnv(prefix+"MYSQL_DATABASE", ""),

		MaxOpenConns:    getEnvAsInt(prefix+"MYSQL_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvAsInt(prefix+"MYSQL_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: time.Duration(getEnvAsInt(prefix+"MYSQL_CONN_MAX_LIFETIME_SECONDS", 600)) * time.Second,
		ConnMaxIdleTime: time.Duration(getEnvAsInt(prefix+"MYSQL_CONN_MAX_IDLE_TIME_SECONDS", 300)) * time.Second,
		QueryTimeout:    time.Duration(getEnvAsInt(prefix+"MYSQL_QUERY_TIMEOUT_SECONDS", 300)) * time.Second,
	}

	return cfg, nil
}

// LoadSQLServerConfig loads SQL Server configuration from environment variables
func LoadSQLServerConfig(prefix string) (*SQLServerConfig, error) {
	user := os.Getenv(prefix + "SQLSERVER_USER")
	if user == "" {
		return nil, errors.New(prefix + "SQLSERVER_USER environment variable is required")
	}

	password := os.Getenv(prefix + "SQLSERVER_PASSWORD")
	if password == "" {
		return nil, errors.New(prefix + "SQLSERVER_PASSWORD environment variable is required")
	}

	cfg := &SQLServerConfig{
		Host:     getEnv(prefix+"SQLSERVER_HOST", "localhost"),
		Port:     getEnvAsInt(prefix+"SQLSERVER_PORT", 1433),
		User:     user,
		Password: password,
		Database: getEnv(prefix+"SQLSERVER_DATABASE", ""),
		Encrypt:  getEnv(prefix+"SQLSERVER_ENCRYPT", "disable"),

		MaxOpenConns:    getEnvAsInt(prefix+"SQLSERVER_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvAsInt(prefix+"SQLSERVER_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: time.Duration(getEnvAsInt(prefix+"SQLSERVER_CONN_MAX_LIFETIME_SECONDS", 600)) * time.Second,
		ConnMaxIdleTime: time.Duration(getEnvAsInt(prefix+"SQLSERVER_CONN_MAX_IDLE_TIME_SECONDS", 300)) * time.Second,
		QueryTimeout:    time.Duration(getEnvAsInt(prefix+"SQLSERVER_QUERY_TIMEOUT_SECONDS", 300)) * time.Second,
	}

	return cfg, nil
}

// LoadOracleConfig loads Oracle configuration from environment variables
func LoadOracleConfig(prefix string) (*OracleConfig, error) {
	user := os.Getenv(prefix + "ORACLE_USER")
	if user == "" {
		return nil, errors.New(prefix + "ORACLE_USER environment variable is required")
	}

	password := os.Getenv(prefix + "ORACLE_PASSWORD")
	if password == "" {
		return nil, errors.New(prefix + "ORACLE_PASSWORD environment variable is required")
	}

	service := os.Getenv(prefix + "ORACLE_SERVICE")
	if service == "" {
		return nil, errors.New(prefix + "ORACLE_SERVICE environment variable is required")
	}

	cfg := &OracleConfig{
		Host:     getEnv(prefix+"ORACLE_HOST", "localhost"),
		Port:     getEnvAsInt(prefix+"ORACLE_PORT", 1521),
		User:     user,
		Password: password,
		Service:  service,

		MaxOpenConns:    getEnvAsInt(prefix+"ORACLE_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvAsInt(prefix+"ORACLE_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: time.Duration(getEnvAsInt(prefix+"ORACLE_CONN_MAX_LIFETIME_SECONDS", 600)) * time.Second,
		ConnMaxIdleTime: time.Duration(getEnvAsInt(prefix+"ORACLE_CONN_MAX_IDLE_TIME_SECONDS", 300)) * time.Second,
		QueryTimeout:    time.Duration(getEnvAsInt(prefix+"ORACLE_QUERY_TIMEOUT_SECONDS", 300)) * time.Second,
	}

	return cfg, nil
}

// LoadDB2Config loads Db2 configuration from environment variables
func LoadDB2Config(prefix string) (*DB2Config, error) {
	user := os.Getenv(prefix + "DB2_USER")
	if user == "" {
		return nil, errors.New(prefix + "DB2_USER environment variable is required")
	}

	password := os.Getenv(prefix + "DB2_PASSWORD")
	if password == "" {
		return nil, errors.New(prefix + "DB2_PASSWORD environment variable is required")
	}

	database := os.Getenv(prefix + "DB2_DATABASE")
	if database == "" {
		return nil, errors.New(prefix + "DB2_DATABASE environment variable is required")
	}

	cfg := &DB2Config{
		Host:     getEnv(prefix+"DB2_HOST", "localhost"),
		Port:     getEnvAsInt(prefix+"DB2_PORT", 50000),
		User:     user,
		Password: password,
		Database: database,

		MaxOpenConns:    getEnvAsInt(prefix+"DB2_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvAsInt(prefix+"DB2_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: time.Duration(getEnvAsInt(prefix+"DB2_CONN_MAX_LIFETIME_SECONDS", 600)) * time.Second,
		ConnMaxIdleTime: time.Duration(getEnvAsInt(prefix+"DB2_CONN_MAX_IDLE_TIME_SECONDS", 300)) * time.Second,
		QueryTimeout:    time.Duration(getEnvAsInt(prefix+"DB2_QUERY_TIMEOUT_SECONDS", 300)) * time.Second,
	}

	return cfg, nil
}

// ConnectionString returns a formatted PostgreSQL connection string
func (c *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Database,
		c.SSLMode,
	)
}

// ConnectionString returns a formatted MySQL DSN
func (c *MySQLConfig) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// ConnectionString returns a formatted SQL Server URL
func (c *SQLServerConfig) ConnectionString() string {
	query := url.Values{}
	query.Set("encrypt", c.Encrypt)
	if c.Database != "" {
		query.Set("database", c.Database)
	}

	u := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		RawQuery: query.Encode(),
	}

	return u.String()
}

// ConnectionString returns a formatted Oracle URL
func (c *OracleConfig) ConnectionString() string {
	return go_ora.BuildUrl(c.Host, c.Port, c.Service, c.User, c.Password, nil)
}

// ConnectionString returns a formatted Db2 connection string
func (c *DB2Config) ConnectionString() string {
	return fmt.Sprintf("HOSTNAME=%s;DATABASE=%s;PORT=%d;UID=%s;PWD=%s",
		c.Host,
		c.Database,
		c.Port,
		c.User,
		c.Password,
	)
}

// Helper function to parse string slice from environment
func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Simple comma-separated parsing
	var result []string
	for _, v := range splitCommaDelimited(value) {
		if v != "" {
			result = append(result, v)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}

// Split comma-delimited string and trim whitespace
func splitCommaDelimited(s string) []string {
	result := make([]string, 0)
	current := ""
	inQuotes := false

	for _, char := range s {
		switch char {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				result = append(result, current)
				current = ""
			} else {
				current += string(char)
			}
		default:
			current += string(char)
		}
	}

	if current != "" {
		result = append(result, current)
	}

	// Trim whitespace
	for i, v := range result {
		result[i] = trimSpace(v)
	}

	return result
}

// Simple whitespace trimming
func trimSpace(s string) string {
	// Remove leading/trailing whitespace and quotes
	result := ""
	for _, c := range s {
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' && c != '"' {
			result += string(c)
		}
	}
	return result
}
