package analyzer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ppiankov/queryspectre/internal/models"
)

func TestAnalyzeFiltersBySchema(t *testing.T) {
	queries := loadFixtureQueries(t, "queries.json")

	result := New([]string{"orders", "users"}).Analyze(queries)

	if got, want := result.IDs(), []int{1, 3, 5, 6}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected ids %v, got %v", want, got)
	}

	expect := map[int][]string{
		1: {"orders", "users"},
		3: {},
		5: {},
		6: {"orders", "orders"},
	}
	for id, want := range expect {
		got, ok := result.Get(id)
		if !ok {
			t.Fatalf("expected query %d to be present", id)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("query %d: expected %v, got %v", id, want, got)
		}
	}
}

func TestAnalyzeWithoutSchemaKeepsEveryCandidate(t *testing.T) {
	queries := loadFixtureQueries(t, "queries.json")

	result := New(nil).Analyze(queries)

	expect := map[int][]string{
		1: {"orders", "users"},
		3: {"analytics.events", "public.users"},
		5: {"Orders"},
		6: {"orders", "x", "orders"},
	}
	if result.Len() != len(expect) {
		t.Fatalf("expected %d queries, got %d (%v)", len(expect), result.Len(), result.IDs())
	}
	for id, want := range expect {
		got, _ := result.Get(id)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("query %d: expected %v, got %v", id, want, got)
		}
	}
}

func TestAnalyzeOmitsQueriesThatNeverMatch(t *testing.T) {
	queries := []models.Query{
		{ID: 2, Query: "select * from (select 1) t"},
		{ID: 4, Query: "SELECT 1"},
		{ID: 8, Query: ""},
	}

	result := New(nil).Analyze(queries)
	if result.Len() != 0 {
		t.Fatalf("expected empty map, got ids %v", result.IDs())
	}
}

func TestAnalyzeMatchedButFilteredIsPresent(t *testing.T) {
	queries := []models.Query{{ID: 9, Query: "SELECT * FROM audit_log"}}

	result := New([]string{"orders"}).Analyze(queries)

	tables, ok := result.Get(9)
	if !ok {
		t.Fatal("expected query 9 to be present with an empty list")
	}
	if len(tables) != 0 {
		t.Fatalf("expected no tables, got %v", tables)
	}
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	queries := loadFixtureQueries(t, "queries.json")
	a := New([]string{"orders", "users"})

	first, err := json.Marshal(a.Analyze(queries))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	second, err := json.Marshal(a.Analyze(queries))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("expected identical results\nfirst:  %s\nsecond: %s", first, second)
	}
}

func TestAnalyzeDuplicateQueryIDKeepsFirstPosition(t *testing.T) {
	queries := []models.Query{
		{ID: 1, Query: "select * from a"},
		{ID: 2, Query: "select * from b"},
		{ID: 1, Query: "select * from c"},
	}

	result := New(nil).Analyze(queries)
	if got, want := result.IDs(), []int{1, 2}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected ids %v, got %v", want, got)
	}
	if got, _ := result.Get(1); !reflect.DeepEqual(got, []string{"c"}) {
		t.Fatalf("expected later query text to win, got %v", got)
	}
}

func TestExtractCandidates(t *testing.T) {
	cases := []struct {
		name string
		sql  string
		want []string
	}{
		{name: "upper", sql: "SELECT * FROM Foo", want: []string{"Foo"}},
		{name: "lower", sql: "select * from Foo", want: []string{"Foo"}},
		{name: "mixed_case_keyword", sql: "select * FrOm Foo jOiN Bar", want: []string{"Foo", "Bar"}},
		{name: "newlines_and_tabs", sql: "select *\nFROM\n\t  foo\nJOIN\r\nbar", want: []string{"foo", "bar"}},
		{name: "unicode_space", sql: "select * from\u00a0foo join\u3000bar", want: []string{"foo", "bar"}},
		{name: "vertical_tab", sql: "select * from\vfoo", want: []string{"foo"}},
		{name: "schema_qualified", sql: "select * from analytics.events", want: []string{"analytics.events"}},
		{name: "subquery", sql: "select * from (select 1) t", want: []string{}},
		{name: "no_whitespace", sql: "select * from(foo)", want: []string{}},
		{name: "stops_at_paren", sql: "select * from orders) x", want: []string{"orders"}},
		{name: "comma_is_kept", sql: "select * from a,b", want: []string{"a,b"}},
		{name: "quoted", sql: "select * from \"public\".\"users\"", want: []string{"\"public\".\"users\""}},
		{name: "duplicates", sql: "select * from t join t on true", want: []string{"t", "t"}},
		{name: "keyword_suffix", sql: "select datefrom x", want: []string{"x"}},
		{name: "none", sql: "select 1", want: []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractCandidates(tc.sql)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func loadFixtureQueries(t *testing.T, filename string) []models.Query {
	t.Helper()
	path := filepath.Join("testdata", filename)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", path, err)
	}

	var queries []models.Query
	if err := json.Unmarshal(data, &queries); err != nil {
		t.Fatalf("failed to unmarshal fixture %s: %v", path, err)
	}

	return queries
}
