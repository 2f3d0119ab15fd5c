package collector

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ppiankov/queryspectre/internal/logging"
)

const clickHouseTablesQuery = `
		SELECT
			database,
			name
		FROM system.tables
		WHERE database NOT IN ('system', 'information_schema', 'INFORMATION_SCHEMA')
		ORDER BY database, name
	`

// ClickHouseSchema reads table names straight from the ClickHouse server
// behind a data source. Names are rendered "database.table", matching how
// Redash's ClickHouse runner names schema tables.
type ClickHouseSchema struct {
	conn *sql.DB
}

// NewClickHouseSchema connects to ClickHouse using dsn
func NewClickHouseSchema(ctx context.Context, dsn string) (*ClickHouseSchema, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ClickHouse DSN: %w", err)
	}

	opts.MaxOpenConns = 2
	opts.MaxIdleConns = 1
	opts.DialTimeout = 30 * time.Second

	// readonly users cannot change query settings
	opts.Settings = nil

	conn := clickhouse.OpenDB(opts)
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	slog.Debug("connected to ClickHouse", slog.String("dsn", logging.Mask(dsn)))

	return NewClickHouseSchemaFromDB(conn), nil
}

// NewClickHouseSchemaFromDB wraps an existing connection
func NewClickHouseSchemaFromDB(conn *sql.DB) *ClickHouseSchema {
	return &ClickHouseSchema{conn: conn}
}

// TableNames lists user tables as "database.table"
func (s *ClickHouseSchema) TableNames(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, clickHouseTablesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list ClickHouse tables: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var database, name string
		if err := rows.Scan(&database, &name); err != nil {
			return nil, fmt.Errorf("failed to scan ClickHouse table row: %w", err)
		}
		names = append(names, database+"."+name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ClickHouse tables: %w", err)
	}

	slog.Debug("fetched ClickHouse schema", slog.Int("tables", len(names)))
	return names, nil
}

// Close closes the ClickHouse connection
func (s *ClickHouseSchema) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
