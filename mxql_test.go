package mxql

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/mxql/catalog"
	"github.com/rulego/mxql/types"
)

func TestValidatePipeline(t *testing.T) {
	m := New()

	report := m.Validate(`
CATEGORY db_postgresql
TAGLOAD
FILTER {key: "cpu", cmp: "gt", value: "80"}
GROUP {pk: "oname", timeunit: "5m"}
UPDATE {key: "cpu", value: "avg"}
ORDER {key: "cpu", sort: "desc"}
LIMIT 10
`)

	assert.True(t, report.Valid)
	assert.Zero(t, report.Criticals)
	assert.Zero(t, report.Warnings)
}

func TestValidateAggregationWithoutGrouping(t *testing.T) {
	m := New()

	report := m.Validate(`
CATEGORY db_postgresql
TAGLOAD
UPDATE {key: "cpu", value: "avg"}
`)

	assert.False(t, report.Valid)
	require.Equal(t, 1, report.Criticals)

	var found *types.Issue
	for _, issue := range report.Issues {
		if issue.Code == types.CodeUpdateWithoutGroup {
			found = issue
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, types.Critical, found.Severity)
}

func TestValidateNeverPanicsOnGarbage(t *testing.T) {
	m := New()
	inputs := []string{
		"",
		"   \n\t",
		"!!!@@@###",
		"{{{{[[[[",
		"SELECT",
		"END\nEND\nEND",
		"SUB {id: a}\nSUB {id: b}\nSUB {id: c}",
		strings.Repeat("CATEGORY x\n", 1000),
	}
	for _, input := range inputs {
		report := m.Validate(input)
		require.NotNil(t, report, "input %q", input)
	}
}

func TestParseExposesQuery(t *testing.T) {
	m := New()
	q, issues := m.Parse("CATEGORY db_x\nTAGLOAD\nSELECT [cpu]")

	require.Len(t, q.Commands, 3)
	assert.Empty(t, issues)
}

func TestExtractFieldsFacade(t *testing.T) {
	m := New()
	refs := m.ExtractFields(`
CATEGORY db_x
TAGLOAD
SELECT [oname, cpu]
FILTER {key: "mem", cmp: "gt", value: 80}
`)

	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name
	}
	assert.Equal(t, []string{"oname", "cpu", "mem"}, names)
}

func TestSynthesizeRowsFacade(t *testing.T) {
	m := New(WithSampleRows(5))
	rows, order := m.SynthesizeRows("CATEGORY db_x\nTAGLOAD\nSELECT [cpu]")

	assert.Len(t, rows, 5)
	assert.Equal(t, []string{"time", "oid", "oname", "cpu"}, order)
}

func TestGenerateTestQueryRoundTrip(t *testing.T) {
	m := New()
	query := "CATEGORY db_x\nTAGLOAD\nSELECT [oname, cpu]\nORDER {key: \"cpu\"}\nLIMIT 10"

	out := m.GenerateTestQuery(query)
	assert.Contains(t, out, "SUB {id: test_data}")
	assert.Contains(t, out, "ADDROW")

	// The rewritten query is still a valid query.
	report := m.Validate(out)
	assert.True(t, report.Valid, report.Format())
}

func TestWithCatalogEnablesFieldChecks(t *testing.T) {
	finder := catalog.Static{
		"db_postgresql": &catalog.CategoryMeta{
			CategoryName: "db_postgresql",
			Fields:       []catalog.Field{{FieldName: "cpu"}},
		},
	}
	m := New(WithCatalog(finder))

	report := m.Validate(`
CATEGORY db_postgresql
TAGLOAD
SELECT [cpu, ghost]
`)

	hasUnknown := false
	for _, issue := range report.Issues {
		if issue.Code == types.CodeUnknownField {
			hasUnknown = true
			assert.Contains(t, issue.Message, "ghost")
		}
	}
	assert.True(t, hasUnknown)
}

func TestReportSerializesToJSON(t *testing.T) {
	m := New()
	report := m.Validate("TAGLOAD\nCATEGORY db_x")

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"severity":"critical"`)
	assert.Contains(t, string(data), `"loader-before-category"`)
}

func TestConcurrentUse(t *testing.T) {
	m := New()
	query := `
CATEGORY db_postgresql
TAGLOAD
GROUP {pk: "oname"}
UPDATE {key: "cpu", value: "avg"}
`
	want := m.Validate(query).Summary()

	done := make(chan string, 8)
	for i := 0; i < 8; i++ {
		go func() {
			done <- m.Validate(query).Summary()
		}()
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, want, <-done)
	}
}
