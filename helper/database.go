package helper

import (
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the connection parameters for Postgres
type DatabaseConfiguration struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	Schema   string
}

// NewDatabaseConfiguration reads the database configuration from the
// environment. A .env file is loaded first if present.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	// .env is optional, env vars win either way
	_ = godotenv.Load()

	config := &DatabaseConfiguration{
		Host:     os.Getenv("KGRAPH_DB_HOST"),
		Port:     os.Getenv("KGRAPH_DB_PORT"),
		User:     os.Getenv("KGRAPH_DB_USER"),
		Password: os.Getenv("KGRAPH_DB_PASSWORD"),
		Name:     os.Getenv("KGRAPH_DB_NAME"),
		Schema:   os.Getenv("KGRAPH_DB_SCHEMA"),
	}

	if config.Host == "" || config.Port == "" || config.User == "" || config.Name == "" {
		return nil, NewError("database configuration", fmt.Errorf("missing required environment variables (KGRAPH_DB_HOST, KGRAPH_DB_PORT, KGRAPH_DB_USER, KGRAPH_DB_NAME)"))
	}
	if config.Schema == "" {
		config.Schema = "public"
	}

	return config, nil
}

// ConnectionString builds a lib/pq connection string
func (c *DatabaseConfiguration) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s search_path=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name, c.Schema,
	)
}

// Database wraps the sql.DB instance together with its logger
type Database struct {
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabase opens a connection to Postgres and pings it until ready.
// It panics if the database cannot be reached, as nothing in the
// library can work without a store.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) *Database {
	instance, err := sql.Open("postgres", config.ConnectionString())
	if err != nil {
		log.Panicf("error opening database connection: %v", err)
	}

	instance.SetMaxOpenConns(25)
	instance.SetMaxIdleConns(5)
	instance.SetConnMaxLifetime(5 * time.Minute)

	for i := 0; i < 10; i++ {
		err = instance.Ping()
		if err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		log.Panicf("error pinging database %v: %v", name, err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host))

	return &Database{
		Instance: instance,
		Logger:   logger,
	}
}

// Close closes the underlying connection pool
func (d *Database) Close() error {
	if d.Instance != nil {
		return d.Instance.Close()
	}
	return nil
}

// NewTestDatabase opens a database connection with a quiet logger for tests
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	opts := PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelError,
		},
	}
	logger := slog.New(NewPrettyHandler(os.Stdout, opts))
	return NewDatabase("test", config, logger)
}
