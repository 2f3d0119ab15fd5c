package reporter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ppiankov/queryspectre/internal/models"
	"github.com/ppiankov/queryspectre/pkg/config"
)

// Output formats
const (
	FormatSummary = "summary"
	FormatDetail  = "detail"
	FormatJSON    = "json"
)

// NoTablesMessage is printed instead of an empty summary table
const NoTablesMessage = "no tables found"

// Reporter interface for rendering query/table results
type Reporter interface {
	Generate(tables *models.QueryTableMap) error
}

// reporter implements the Reporter interface
type reporter struct {
	format string
	out    io.Writer
}

// New creates a reporter writing to out in the format selected by cfg
func New(cfg *config.Config, out io.Writer) Reporter {
	return &reporter{
		format: FormatFor(cfg),
		out:    out,
	}
}

// FormatFor returns the output format selected by the config flags
func FormatFor(cfg *config.Config) string {
	switch {
	case cfg == nil:
		return FormatSummary
	case cfg.JSON:
		return FormatJSON
	case cfg.Detail:
		return FormatDetail
	default:
		return FormatSummary
	}
}

// Generate renders the report. An empty summary prints NoTablesMessage and
// is not treated as a failure.
func (r *reporter) Generate(tables *models.QueryTableMap) error {
	if r.out == nil {
		return fmt.Errorf("writer is nil")
	}

	switch r.format {
	case FormatJSON:
		return WriteJSON(r.out, tables)
	case FormatDetail:
		return WriteDetail(r.out, tables)
	default:
		err := WriteSummary(r.out, tables)
		if errors.Is(err, ErrNoTables) {
			slog.Debug("summary has no rows", slog.Int("queries", tables.Len()))
			_, err = fmt.Fprintln(r.out, NoTablesMessage)
		}
		return err
	}
}
