package collector

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/ppiankov/queryspectre/internal/models"
	"github.com/ppiankov/queryspectre/internal/redash"
)

// Client is the subset of the Redash API the collector needs
type Client interface {
	Get(ctx context.Context, path string, params url.Values, out any) error
	Queries(ctx context.Context, page, pageSize int) (*redash.QueryPage, error)
	Paginate(ctx context.Context, fetch redash.PageFunc) ([]models.Query, error)
}

// SchemaSource lists the table names known for a data source
type SchemaSource interface {
	TableNames(ctx context.Context) ([]string, error)
}

// Result holds everything fetched for one data source
type Result struct {
	SchemaTables []string
	Queries      []models.Query
}

// Collector fetches schema tables and saved queries for a data source
type Collector interface {
	Collect(ctx context.Context) (*Result, error)
	Close() error
}

// collector implements the Collector interface
type collector struct {
	client       Client
	schema       SchemaSource
	dataSourceID int
}

// New creates a collector for dataSourceID. When schema is nil the table
// list comes from the Redash schema endpoint.
func New(client Client, dataSourceID int, schema SchemaSource) Collector {
	if schema == nil {
		schema = NewRedashSchema(client, dataSourceID)
	}
	return &collector{
		client:       client,
		schema:       schema,
		dataSourceID: dataSourceID,
	}
}

// ParseDataSourceID converts the command line data source id to an integer
func ParseDataSourceID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid data_source_id %q: must be an integer", raw)
	}
	return id, nil
}

// Collect retrieves the schema table names and the data source's queries
func (c *collector) Collect(ctx context.Context) (*Result, error) {
	tables, err := c.schema.TableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schema: %w", err)
	}

	queries, err := c.queries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch queries: %w", err)
	}

	return &Result{
		SchemaTables: tables,
		Queries:      queries,
	}, nil
}

func (c *collector) queries(ctx context.Context) ([]models.Query, error) {
	all, err := c.client.Paginate(ctx, c.client.Queries)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.Query, 0, len(all))
	for _, query := range all {
		if query.BelongsTo(c.dataSourceID) {
			filtered = append(filtered, query)
		}
	}

	slog.Debug("filtered queries by data source",
		slog.Int("data_source_id", c.dataSourceID),
		slog.Int("total", len(all)),
		slog.Int("kept", len(filtered)),
	)

	return filtered, nil
}

// Close releases the schema source if it holds a connection
func (c *collector) Close() error {
	if closer, ok := c.schema.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
