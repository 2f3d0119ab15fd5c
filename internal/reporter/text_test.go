package reporter

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/queryspectre/internal/models"
	"github.com/ppiankov/queryspectre/pkg/config"
)

func buildMap(entries ...any) *models.QueryTableMap {
	m := models.NewQueryTableMap()
	for i := 0; i < len(entries); i += 2 {
		m.Set(entries[i].(int), entries[i+1].([]string))
	}
	return m
}

func TestWriteSummaryFormat(t *testing.T) {
	tables := buildMap(1, []string{"orders", "users"})

	var out bytes.Buffer
	if err := WriteSummary(&out, tables); err != nil {
		t.Fatalf("WriteSummary failed: %v", err)
	}

	pad := strings.Repeat(" ", 16)
	want := "\n\n" +
		" table | number of queries\n" +
		"------ | -----------------\n" +
		"orders | " + pad + "1\n" +
		" users | " + pad + "1\n" +
		"\n\n"
	if out.String() != want {
		t.Fatalf("unexpected summary\nwant: %q\ngot:  %q", want, out.String())
	}
}

func TestSummarizeCountsQueriesNotOccurrences(t *testing.T) {
	tables := buildMap(
		1, []string{"a", "b", "a"},
		2, []string{"b"},
		3, []string{},
		4, []string{"c", "b"},
	)

	got := Summarize(tables)
	want := []models.TableCount{
		{Table: "b", Queries: 3},
		{Table: "a", Queries: 1},
		{Table: "c", Queries: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSummarizeTiesKeepFirstAppearance(t *testing.T) {
	tables := buildMap(
		9, []string{"zeta"},
		3, []string{"alpha", "zeta"},
		5, []string{"mid", "alpha"},
	)

	var names []string
	for _, c := range Summarize(tables) {
		names = append(names, c.Table)
	}
	if want := []string{"zeta", "alpha", "mid"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
}

func TestWriteSummaryNarrowTableNames(t *testing.T) {
	tables := buildMap(1, []string{"a"}, 2, []string{"a"})

	var out bytes.Buffer
	if err := WriteSummary(&out, tables); err != nil {
		t.Fatalf("WriteSummary failed: %v", err)
	}

	lines := strings.Split(out.String(), "\n")
	if lines[2] != "table | number of queries" {
		t.Fatalf("expected header wider than column, got %q", lines[2])
	}
	if lines[3] != "- | -----------------" {
		t.Fatalf("unexpected separator %q", lines[3])
	}
	if lines[4] != "a | "+strings.Repeat(" ", 16)+"2" {
		t.Fatalf("unexpected row %q", lines[4])
	}
}

func TestWriteSummaryAlignsByRunes(t *testing.T) {
	tables := buildMap(1, []string{"café_orders", "x"})

	var out bytes.Buffer
	if err := WriteSummary(&out, tables); err != nil {
		t.Fatalf("WriteSummary failed: %v", err)
	}
	lines := strings.Split(out.String(), "\n")
	if lines[3] != strings.Repeat("-", 11)+" | "+strings.Repeat("-", 17) {
		t.Fatalf("expected 11 dash column, got %q", lines[3])
	}
	if lines[5] != strings.Repeat(" ", 10)+"x | "+strings.Repeat(" ", 16)+"1" {
		t.Fatalf("unexpected padded row %q", lines[5])
	}
}

func TestWriteSummaryEmpty(t *testing.T) {
	cases := []struct {
		name   string
		tables *models.QueryTableMap
	}{
		{name: "no_queries", tables: models.NewQueryTableMap()},
		{name: "only_filtered_queries", tables: buildMap(1, []string{}, 2, []string{})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			err := WriteSummary(&out, tc.tables)
			if !errors.Is(err, ErrNoTables) {
				t.Fatalf("expected ErrNoTables, got %v", err)
			}
			if out.Len() != 0 {
				t.Fatalf("expected no output, got %q", out.String())
			}
		})
	}
}

func TestWriteDetail(t *testing.T) {
	tables := buildMap(
		1, []string{"orders", "users"},
		2, []string{},
		7, []string{"orders", "orders"},
	)

	var out bytes.Buffer
	if err := WriteDetail(&out, tables); err != nil {
		t.Fatalf("WriteDetail failed: %v", err)
	}

	want := "1,orders\n1,users\n7,orders\n7,orders\n"
	if out.String() != want {
		t.Fatalf("expected %q, got %q", want, out.String())
	}
}

func TestWriteDetailSkipsEmptyLists(t *testing.T) {
	tables := buildMap(1, []string{"orders", "users"}, 2, []string{})

	var out bytes.Buffer
	if err := WriteDetail(&out, tables); err != nil {
		t.Fatalf("WriteDetail failed: %v", err)
	}
	if out.String() != "1,orders\n1,users\n" {
		t.Fatalf("expected exactly two lines, got %q", out.String())
	}
}

func TestReporterGenerateFormats(t *testing.T) {
	tables := buildMap(1, []string{"orders"})

	cases := []struct {
		name   string
		detail bool
		json   bool
		want   string
	}{
		{name: "summary", want: "orders | "},
		{name: "detail", detail: true, want: "1,orders\n"},
		{name: "json", json: true, want: "\"1\": [\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Detail = tc.detail
			cfg.JSON = tc.json

			var out bytes.Buffer
			if err := New(cfg, &out).Generate(tables); err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			assertContains(t, out.String(), tc.want)
		})
	}
}

func TestReporterGenerateNoTables(t *testing.T) {
	var out bytes.Buffer
	if err := New(config.DefaultConfig(), &out).Generate(models.NewQueryTableMap()); err != nil {
		t.Fatalf("expected empty summary to succeed, got %v", err)
	}
	if out.String() != NoTablesMessage+"\n" {
		t.Fatalf("expected %q, got %q", NoTablesMessage+"\n", out.String())
	}
}

func TestReporterGenerateNilWriter(t *testing.T) {
	err := New(config.DefaultConfig(), nil).Generate(models.NewQueryTableMap())
	if err == nil || !strings.Contains(err.Error(), "writer is nil") {
		t.Fatalf("expected nil writer error, got %v", err)
	}
}

func assertContains(t *testing.T, output string, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, output)
	}
}
