/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package types defines the shared data model of the MXQL analyzer:
// severities, issues, the parsed query/command structures and the
// validation report.
package types

import (
	"fmt"
	"strings"
)

// Severity classifies how serious an issue is.
type Severity int

const (
	// Critical means the query will not execute correctly.
	Critical Severity = iota
	// Warning means the query executes but is likely wrong or slow.
	Warning
	// Info is a style or optimization suggestion.
	Info
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case Critical:
		return "critical"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Stable issue codes. Codes are part of the public contract: tooling may
// match on them, so they never change meaning between releases.
const (
	CodeUnbalancedPayload = "unbalanced-payload"
	CodeMalformedPayload  = "malformed-payload"
	CodeMissingPayload    = "missing-payload"
	CodeUnexpectedPayload = "unexpected-payload"
	CodeUnknownCommand    = "unknown-command"
	CodeUnmatchedEnd      = "unmatched-end"
	CodeUnclosedSub       = "unclosed-sub"
	CodeNestedSub         = "nested-sub"
	CodeTrailingSeparator = "trailing-separator"
	CodeUnquotedKey       = "unquoted-key"

	CodeLoaderBeforeCategory = "loader-before-category"
	CodeMissingLoader        = "missing-loader"
	CodeUpdateWithoutGroup   = "update-without-group"
	CodeLimitWithoutOrder    = "limit-without-order"
	CodeUndefinedSubquery    = "undefined-subquery"
	CodeDuplicateSelect      = "duplicate-select"
	CodeGroupInvalidKey      = "group-invalid-key"

	CodeFilterAfterGroup  = "filter-after-group"
	CodeSelectAllFields   = "select-all-fields"
	CodeUnboundedResult   = "unbounded-result"
	CodeExcessiveTimeunit = "excessive-timeunit"
	CodeCombinableUpdates = "combinable-updates"

	CodeUnknownField        = "unknown-field"
	CodeCategoryUnavailable = "category-unavailable"
)

// Issue is a single finding produced by one of the analysis passes.
type Issue struct {
	Severity Severity `json:"severity"`
	// Code is a stable identifier for the rule that produced the issue.
	Code    string `json:"code"`
	Message string `json:"message"`
	// CommandIndex points into the owning scope's command list.
	CommandIndex int `json:"commandIndex"`
	// Scope is the subquery name the command belongs to, empty for the
	// top-level query.
	Scope string `json:"scope,omitempty"`
	// Line is the 1-based source line of the offending command.
	Line int `json:"line"`
	// Suggestion optionally tells the user how to fix the issue.
	Suggestion string `json:"suggestion,omitempty"`
}

// String formats the issue for human consumption.
func (i *Issue) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] line %d: %s (%s)", strings.ToUpper(i.Severity.String()), i.Line, i.Message, i.Code)
	if i.Scope != "" {
		fmt.Fprintf(&b, " in SUB %q", i.Scope)
	}
	if i.Suggestion != "" {
		fmt.Fprintf(&b, "\n  -> %s", i.Suggestion)
	}
	return b.String()
}

// MarshalJSON is implemented on Severity so reports serialize with readable
// severity names instead of enum ordinals.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Report is the outcome of validating one query text.
type Report struct {
	// Valid is true when no Critical issue was found.
	Valid  bool     `json:"valid"`
	Issues []*Issue `json:"issues"`
	// Per-severity counts, precomputed for summary rendering.
	Criticals int `json:"criticals"`
	Warnings  int `json:"warnings"`
	Infos     int `json:"infos"`
}

// Summary returns a one-line count summary, e.g.
// "query has critical issues (1 critical, 0 warnings, 2 info)".
func (r *Report) Summary() string {
	state := "query is valid"
	if !r.Valid {
		state = "query has critical issues"
	}
	return fmt.Sprintf("%s (%d critical, %d warnings, %d info)",
		state, r.Criticals, r.Warnings, r.Infos)
}

// Format renders the full report as readable text, grouped by severity the
// way the CLI prints it.
func (r *Report) Format() string {
	if r.Valid && len(r.Issues) == 0 {
		return r.Summary() + "\n"
	}
	var b strings.Builder
	b.WriteString(r.Summary())
	b.WriteString("\n")
	sections := []struct {
		severity Severity
		title    string
	}{
		{Critical, "Critical Issues:"},
		{Warning, "Warnings:"},
		{Info, "Suggestions:"},
	}
	for _, sec := range sections {
		var lines []string
		for _, issue := range r.Issues {
			if issue.Severity == sec.severity {
				lines = append(lines, "  "+issue.String())
			}
		}
		if len(lines) > 0 {
			b.WriteString("\n" + sec.title + "\n")
			b.WriteString(strings.Join(lines, "\n"))
			b.WriteString("\n")
		}
	}
	return b.String()
}
