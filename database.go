package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// mirrorEngine is a supported mirror database: its database/sql driver and
// the column type holding JSON payloads.
type mirrorEngine struct {
	driver      string
	payloadType string
}

var mirrorEngines = map[string]mirrorEngine{
	"postgresql": {driver: "postgres", payloadType: "JSONB"},
	"postgres":   {driver: "postgres", payloadType: "JSONB"},
	"mysql":      {driver: "mysql", payloadType: "JSON"},
	"mariadb":    {driver: "mysql", payloadType: "JSON"},
	"sqlite":     {driver: "sqlite3", payloadType: "TEXT"},
	"sqlite3":    {driver: "sqlite3", payloadType: "TEXT"},
}

func lookupEngine(name string) (mirrorEngine, error) {
	engine, ok := mirrorEngines[strings.ToLower(name)]
	if !ok {
		return mirrorEngine{}, fmt.Errorf("unsupported database engine: %s", name)
	}
	return engine, nil
}

// mirrorDSN builds the connection string for the mirror. DB_DSN, when set,
// is used verbatim.
func mirrorDSN(config *Config, engine mirrorEngine) string {
	if config.DBDSN != "" {
		return config.DBDSN
	}
	switch engine.driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			config.DBHost, config.DBPort, config.DBUser, config.DBPass, config.DBName, config.DBSSLMode)
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
			config.DBUser, config.DBPass, config.DBHost, config.DBPort, config.DBName)
	}
	return config.DBPath
}

// connectDB opens the mirror database. The service only reads from it, so the
// pool stays small.
func connectDB(config *Config) (*sql.DB, error) {
	engine, err := lookupEngine(config.DBEngine)
	if err != nil {
		return nil, err
	}
	logger.Named("database").Info("opening directory mirror",
		zap.String("engine", config.DBEngine),
		zap.String("driver", engine.driver),
		zap.Bool("custom_dsn", config.DBDSN != ""),
	)

	db, err := sql.Open(engine.driver, mirrorDSN(config, engine))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s mirror: %w", engine.driver, err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// SQLSource reads the column schema and records from a mirror database.
// Each table row holds one JSON document; position keeps the upstream order.
type SQLSource struct {
	db  *sql.DB
	log *zap.Logger
}

func NewSQLSource(db *sql.DB) *SQLSource {
	return &SQLSource{db: db, log: logger.Named("database")}
}

func (s *SQLSource) Columns(ctx context.Context) ([]Column, error) {
	doc, err := s.readDocuments(ctx, "directory_columns")
	if err != nil {
		return nil, err
	}
	return decodeColumns(doc)
}

func (s *SQLSource) Records(ctx context.Context) ([]Record, error) {
	doc, err := s.readDocuments(ctx, "directory_records")
	if err != nil {
		return nil, err
	}
	return decodeRecords(doc)
}

// readDocuments joins the payload column of a table into one JSON array.
func (s *SQLSource) readDocuments(ctx context.Context, table string) ([]byte, error) {
	query := fmt.Sprintf("SELECT payload FROM %s ORDER BY position ASC", table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.log.Error("query failed", zap.String("table", table), zap.Error(err))
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var parts []string
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		parts = append(parts, payload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}

	s.log.Debug("read documents", zap.String("table", table), zap.Int("rows", len(parts)))
	return []byte("[" + strings.Join(parts, ",") + "]"), nil
}

// initMirrorTables creates the mirror tables if they don't exist
func initMirrorTables(db *sql.DB, engineName string) error {
	engine, err := lookupEngine(engineName)
	if err != nil {
		return err
	}

	for _, table := range []string{"directory_columns", "directory_records"} {
		query := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				position INTEGER PRIMARY KEY,
				payload %s NOT NULL
			)
		`, table, engine.payloadType)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table, err)
		}
	}
	return nil
}
