package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Query represents a saved query as returned by the Redash API
type Query struct {
	ID           int    `json:"id"`
	Name         string `json:"name,omitempty"`
	DataSourceID *int   `json:"data_source_id"` // null for queries without a data source
	Query        string `json:"query"`
}

// BelongsTo reports whether the query is attached to the given data source
func (q Query) BelongsTo(dataSourceID int) bool {
	return q.DataSourceID != nil && *q.DataSourceID == dataSourceID
}

// SchemaTable is a single table descriptor from a data source schema
type SchemaTable struct {
	Name    *string           `json:"name"`
	Columns []json.RawMessage `json:"columns,omitempty"`
}

// TableCount is the number of distinct queries referencing a table
type TableCount struct {
	Table   string `json:"table"`
	Queries int    `json:"queries"`
}

// QueryTableMap maps query IDs to the table names referenced by each query.
// Keys keep their first-insertion order.
type QueryTableMap struct {
	order  []int
	tables map[int][]string
}

// NewQueryTableMap creates an empty map
func NewQueryTableMap() *QueryTableMap {
	return &QueryTableMap{
		tables: make(map[int][]string),
	}
}

// Set stores the table list for a query. Re-setting an existing ID replaces
// the list in place.
func (m *QueryTableMap) Set(queryID int, tables []string) {
	if m.tables == nil {
		m.tables = make(map[int][]string)
	}
	if _, exists := m.tables[queryID]; !exists {
		m.order = append(m.order, queryID)
	}
	if tables == nil {
		tables = []string{}
	}
	m.tables[queryID] = tables
}

// Get returns the table list for a query and whether the query is present
func (m *QueryTableMap) Get(queryID int) ([]string, bool) {
	if m == nil {
		return nil, false
	}
	tables, ok := m.tables[queryID]
	return tables, ok
}

// IDs returns query IDs in insertion order
func (m *QueryTableMap) IDs() []int {
	if m == nil {
		return nil
	}
	ids := make([]int, len(m.order))
	copy(ids, m.order)
	return ids
}

// Len returns the number of queries in the map
func (m *QueryTableMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Tables returns every table reference, duplicates included, in key order
// then list order
func (m *QueryTableMap) Tables() []string {
	if m == nil {
		return nil
	}
	var all []string
	for _, id := range m.order {
		all = append(all, m.tables[id]...)
	}
	return all
}

// MarshalJSON writes the map as a JSON object in insertion order
func (m *QueryTableMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range m.IDs() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(id)))
		buf.WriteByte(':')
		tables, err := json.Marshal(m.tables[id])
		if err != nil {
			return nil, err
		}
		buf.Write(tables)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
