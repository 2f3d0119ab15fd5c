package reporter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ppiankov/queryspectre/internal/models"
)

// WriteJSON writes the query -> tables map as an indented JSON object keyed
// by query ID, in the order queries were returned by the API
func WriteJSON(w io.Writer, tables *models.QueryTableMap) error {
	if tables == nil {
		tables = models.NewQueryTableMap()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tables); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}
	return nil
}
