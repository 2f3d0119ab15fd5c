package analyzer

import (
	"log/slog"

	"github.com/ppiankov/queryspectre/internal/models"
)

// Analyzer maps saved queries to the schema tables they reference
type Analyzer struct {
	schema map[string]struct{}
}

// New creates an analyzer filtering candidates against schemaTables. An
// empty schema keeps every candidate.
func New(schemaTables []string) *Analyzer {
	schema := make(map[string]struct{}, len(schemaTables))
	for _, name := range schemaTables {
		schema[name] = struct{}{}
	}
	return &Analyzer{schema: schema}
}

// Analyze builds the query -> tables map. Queries whose text never matches
// the FROM/JOIN pattern are left out; queries that match but whose
// candidates are all unknown to the schema are kept with an empty list.
func (a *Analyzer) Analyze(queries []models.Query) *models.QueryTableMap {
	result := models.NewQueryTableMap()

	for _, query := range queries {
		if !tableRefPattern.MatchString(query.Query) {
			continue
		}

		kept := make([]string, 0)
		for _, candidate := range ExtractCandidates(query.Query) {
			if a.known(candidate) {
				kept = append(kept, candidate)
			}
		}
		result.Set(query.ID, kept)
	}

	slog.Debug("extracted table references",
		slog.Int("queries", len(queries)),
		slog.Int("matched", result.Len()),
		slog.Int("references", len(result.Tables())),
	)

	return result
}

func (a *Analyzer) known(table string) bool {
	if len(a.schema) == 0 {
		return true
	}
	_, ok := a.schema[table]
	return ok
}
