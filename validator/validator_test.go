package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/mxql/catalog"
	"github.com/rulego/mxql/parser"
	"github.com/rulego/mxql/types"
)

func TestReportCounts(t *testing.T) {
	report := validate(`
TAGLOAD
CATEGORY db_x
SELECT [*]
LIMIT 10
`)

	criticals, warnings, infos := 0, 0, 0
	for _, issue := range report.Issues {
		switch issue.Severity {
		case types.Critical:
			criticals++
		case types.Warning:
			warnings++
		case types.Info:
			infos++
		}
	}
	assert.Equal(t, criticals, report.Criticals)
	assert.Equal(t, warnings, report.Warnings)
	assert.Equal(t, infos, report.Infos)
	assert.Equal(t, report.Criticals == 0, report.Valid)
	assert.False(t, report.Valid)
}

func TestReportOrderedByLine(t *testing.T) {
	report := validate(`
TAGLOAD
CATEGORY db_x
SELECT [*]
UPDATE {key: "cpu", value: "avg"}
LIMIT ten
`)

	require.NotEmpty(t, report.Issues)
	for i := 1; i < len(report.Issues); i++ {
		assert.LessOrEqual(t, report.Issues[i-1].Line, report.Issues[i].Line)
	}
}

func TestReportDeterministic(t *testing.T) {
	input := `
TAGLOAD
CATEGORY db_x
SELECT [*]
SELECT [cpu]
UPDATE {key: "cpu", value: "avg"}
FILTER {key: "cpu", cmp: "gt", value: "80",}
LIMIT ten
`
	first := validate(input)
	second := validate(input)

	require.Equal(t, len(first.Issues), len(second.Issues))
	for i := range first.Issues {
		assert.Equal(t, *first.Issues[i], *second.Issues[i])
	}
	assert.Equal(t, first.Summary(), second.Summary())
}

func TestValidQueryHasEmptyIssueListOrInfosOnly(t *testing.T) {
	report := validate(`
CATEGORY db_x
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

func TestSummaryFormat(t *testing.T) {
	report := validate("CATEGORY db_x\nTAGLOAD\nUPDATE {key: \"cpu\", value: \"avg\"}")
	assert.Contains(t, report.Summary(), "critical issues")
	assert.Contains(t, report.Summary(), "1 critical")

	report = validate("CATEGORY db_x\nTAGLOAD\nORDER {key: \"cpu\"}\nLIMIT 10")
	assert.Contains(t, report.Summary(), "query is valid")
}

func TestFormatGroupsBySeverity(t *testing.T) {
	report := validate("TAGLOAD\nCATEGORY db_x\nSELECT [*]")

	text := report.Format()
	assert.Contains(t, text, "Critical Issues:")
	assert.Contains(t, text, "Warnings:")
	assert.Contains(t, text, "[CRITICAL]")
}

func validateWithCatalog(input string, finder catalog.Finder) *types.Report {
	q, parseIssues := parser.NewParser(input).Parse()
	return New(finder).Validate(q, parseIssues)
}

func testCatalog() catalog.Static {
	return catalog.Static{
		"db_postgresql": &catalog.CategoryMeta{
			CategoryName: "db_postgresql",
			PK:           []string{"oname"},
			Fields: []catalog.Field{
				{FieldName: "cpu", Unit: "%"},
				{FieldName: "mem", Unit: "%"},
				{FieldName: "active_sessions"},
			},
			Tags: []catalog.Tag{{TagName: "host"}},
		},
	}
}

func TestFieldCheckUnknownField(t *testing.T) {
	report := validateWithCatalog(`
CATEGORY db_postgresql
TAGLOAD
SELECT [oname, cpu, bogus_field]
`, testCatalog())

	found := findIssues(report, types.CodeUnknownField)
	require.Len(t, found, 1)
	assert.Equal(t, types.Info, found[0].Severity)
	assert.Contains(t, found[0].Message, "bogus_field")
	assert.True(t, report.Valid)
}

func TestFieldCheckKnowsTagsAndPK(t *testing.T) {
	report := validateWithCatalog(`
CATEGORY db_postgresql
TAGLOAD
SELECT [oname, host, active_sessions]
`, testCatalog())
	assert.Empty(t, findIssues(report, types.CodeUnknownField))
}

func TestFieldCheckBuiltinsAlwaysKnown(t *testing.T) {
	report := validateWithCatalog(`
CATEGORY db_postgresql
TAGLOAD
SELECT [time, oid, oname]
`, testCatalog())
	assert.Empty(t, findIssues(report, types.CodeUnknownField))
}

func TestFieldCheckUnknownCategory(t *testing.T) {
	report := validateWithCatalog(`
CATEGORY no_such_category
TAGLOAD
SELECT [whatever]
`, testCatalog())

	found := findIssues(report, types.CodeCategoryUnavailable)
	require.Len(t, found, 1)
	assert.Equal(t, types.Info, found[0].Severity)
	assert.Empty(t, findIssues(report, types.CodeUnknownField))
}

func TestFieldCheckSkippedWithoutCatalog(t *testing.T) {
	report := validate(`
CATEGORY db_postgresql
TAGLOAD
SELECT [definitely_not_real]
`)
	assert.Empty(t, findIssues(report, types.CodeUnknownField))
	assert.Empty(t, findIssues(report, types.CodeCategoryUnavailable))
}

func TestFieldCheckSkipsParameterizedCategory(t *testing.T) {
	report := validateWithCatalog(`
CATEGORY $category
TAGLOAD
SELECT [whatever]
`, testCatalog())
	assert.Empty(t, findIssues(report, types.CodeCategoryUnavailable))
	assert.Empty(t, findIssues(report, types.CodeUnknownField))
}
