package reporter

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/queryspectre/internal/models"
)

const countHeader = "number of queries"

// ErrNoTables is returned when there is no table reference to summarize
var ErrNoTables = errors.New("no tables found")

// Summarize counts, for every referenced table, how many queries reference it
// at least once. Tables are ordered by descending count; ties keep the order
// in which tables first appear in the map.
func Summarize(tables *models.QueryTableMap) []models.TableCount {
	var counts []models.TableCount
	seen := make(map[string]bool)

	for _, name := range tables.Tables() {
		if seen[name] {
			continue
		}
		seen[name] = true
		counts = append(counts, models.TableCount{
			Table:   name,
			Queries: countQueriesReferencing(tables, name),
		})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Queries > counts[j].Queries
	})

	return counts
}

func countQueriesReferencing(tables *models.QueryTableMap, name string) int {
	n := 0
	for _, id := range tables.IDs() {
		refs, _ := tables.Get(id)
		for _, ref := range refs {
			if ref == name {
				n++
				break
			}
		}
	}
	return n
}

// WriteSummary writes the two column table/count summary. It returns
// ErrNoTables, writing nothing, when no query references any table.
func WriteSummary(w io.Writer, tables *models.QueryTableMap) error {
	counts := Summarize(tables)
	if len(counts) == 0 {
		return ErrNoTables
	}

	align := 0
	for _, c := range counts {
		if n := utf8.RuneCountInString(c.Table); n > align {
			align = n
		}
	}
	countWidth := len(countHeader)

	var b strings.Builder
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%*s | %*s\n", align, "table", countWidth, countHeader)
	fmt.Fprintf(&b, "%s | %s\n", strings.Repeat("-", align), strings.Repeat("-", countWidth))
	for _, c := range counts {
		fmt.Fprintf(&b, "%*s | %*d\n", align, c.Table, countWidth, c.Queries)
	}
	b.WriteString("\n\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// WriteDetail writes one "<query_id>,<table>" line per reference
func WriteDetail(w io.Writer, tables *models.QueryTableMap) error {
	var b strings.Builder
	for _, id := range tables.IDs() {
		refs, _ := tables.Get(id)
		for _, table := range refs {
			fmt.Fprintf(&b, "%d,%s\n", id, table)
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write detail: %w", err)
	}
	return nil
}
