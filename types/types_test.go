package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "critical", Critical.String())
	assert.Equal(t, "warning", Warning.String())
	assert.Equal(t, "info", Info.String())
}

func TestSeverityJSON(t *testing.T) {
	data, err := json.Marshal(Warning)
	require.NoError(t, err)
	assert.Equal(t, `"warning"`, string(data))
}

func TestIssueString(t *testing.T) {
	issue := &Issue{
		Severity:   Critical,
		Code:       CodeUpdateWithoutGroup,
		Message:    "UPDATE without a preceding GROUP",
		Line:       4,
		Suggestion: "add a GROUP command before UPDATE",
	}

	s := issue.String()
	assert.Contains(t, s, "[CRITICAL]")
	assert.Contains(t, s, "line 4")
	assert.Contains(t, s, CodeUpdateWithoutGroup)
	assert.Contains(t, s, "add a GROUP command")
}

func TestIssueStringWithScope(t *testing.T) {
	issue := &Issue{Severity: Info, Code: CodeDuplicateSelect, Message: "dup", Line: 2, Scope: "base"}
	assert.Contains(t, issue.String(), `in SUB "base"`)
}

func TestReportSummary(t *testing.T) {
	valid := &Report{Valid: true, Warnings: 1, Infos: 2}
	assert.Equal(t, "query is valid (0 critical, 1 warnings, 2 info)", valid.Summary())

	invalid := &Report{Criticals: 2}
	assert.Contains(t, invalid.Summary(), "critical issues")
}

func TestReportFormatSections(t *testing.T) {
	report := &Report{
		Issues: []*Issue{
			{Severity: Critical, Code: CodeMissingPayload, Message: "a", Line: 1},
			{Severity: Warning, Code: CodeLimitWithoutOrder, Message: "b", Line: 2},
			{Severity: Info, Code: CodeDuplicateSelect, Message: "c", Line: 3},
		},
		Criticals: 1, Warnings: 1, Infos: 1,
	}

	text := report.Format()
	assert.Contains(t, text, "Critical Issues:")
	assert.Contains(t, text, "Warnings:")
	assert.Contains(t, text, "Suggestions:")
}

func TestReportFormatCleanQuery(t *testing.T) {
	report := &Report{Valid: true}
	assert.Equal(t, "query is valid (0 critical, 0 warnings, 0 info)\n", report.Format())
}
