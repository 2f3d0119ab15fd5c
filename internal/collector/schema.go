package collector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppiankov/queryspectre/internal/models"
)

// RedashSchema reads table names from api/data_sources/{id}/schema
type RedashSchema struct {
	client       Client
	dataSourceID int
}

// NewRedashSchema creates a schema source backed by the Redash API
func NewRedashSchema(client Client, dataSourceID int) *RedashSchema {
	return &RedashSchema{client: client, dataSourceID: dataSourceID}
}

type schemaResponse struct {
	Schema []models.SchemaTable `json:"schema"`
	Error  any                  `json:"error,omitempty"`
	Job    any                  `json:"job,omitempty"`
}

// TableNames returns the named tables of the data source schema. A response
// without a schema yields an empty list, which disables schema filtering.
func (s *RedashSchema) TableNames(ctx context.Context) ([]string, error) {
	path := fmt.Sprintf("api/data_sources/%d/schema", s.dataSourceID)

	var resp schemaResponse
	if err := s.client.Get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	if resp.Schema == nil {
		slog.Warn("schema response has no tables, table names will not be filtered",
			slog.Int("data_source_id", s.dataSourceID),
			slog.Bool("error_reported", resp.Error != nil),
			slog.Bool("refresh_pending", resp.Job != nil),
		)
		return []string{}, nil
	}

	names := make([]string, 0, len(resp.Schema))
	skipped := 0
	for _, table := range resp.Schema {
		if table.Name == nil {
			skipped++
			continue
		}
		names = append(names, *table.Name)
	}

	slog.Debug("fetched schema",
		slog.Int("data_source_id", s.dataSourceID),
		slog.Int("tables", len(names)),
		slog.Int("unnamed", skipped),
	)

	return names, nil
}
