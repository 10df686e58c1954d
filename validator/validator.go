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

// Package validator runs the analysis passes over a parsed query and
// assembles the validation report. Each call builds its own state; a
// Validator is safe for concurrent use.
package validator

import (
	"sort"

	"github.com/rulego/mxql/catalog"
	"github.com/rulego/mxql/logger"
	"github.com/rulego/mxql/types"
)

// Validator owns the per-instance configuration of the analysis passes.
type Validator struct {
	finder catalog.Finder
}

// New creates a validator. finder may be nil, disabling field checks.
func New(finder catalog.Finder) *Validator {
	return &Validator{finder: finder}
}

// Validate runs all passes over the parsed query. parseIssues are the
// structural/style issues the parser produced; they merge into the
// report ahead of everything found here.
func (v *Validator) Validate(q *types.Query, parseIssues []*types.Issue) *types.Report {
	issues := make([]*types.Issue, 0, len(parseIssues))
	issues = append(issues, parseIssues...)

	checkStructure(q, "", &issues)
	checkSemantics(q, "", nil, true, &issues)
	checkPerformance(q, "", true, 0, &issues)
	checkFields(q, v.finder, &issues)

	report := buildReport(issues)
	logger.Debug("validation finished: %s", report.Summary())
	return report
}

// severityRank orders Critical before Warning before Info.
func severityRank(s types.Severity) int {
	switch s {
	case types.Critical:
		return 0
	case types.Warning:
		return 1
	default:
		return 2
	}
}

// buildReport merges, orders and counts the issues. Ordering is fully
// deterministic: source line, then command index, then severity, then
// insertion order — identical input always yields an identical report.
func buildReport(issues []*types.Issue) *types.Report {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.CommandIndex != b.CommandIndex {
			return a.CommandIndex < b.CommandIndex
		}
		return severityRank(a.Severity) < severityRank(b.Severity)
	})

	report := &types.Report{Issues: issues}
	for _, issue := range issues {
		switch issue.Severity {
		case types.Critical:
			report.Criticals++
		case types.Warning:
			report.Warnings++
		case types.Info:
			report.Infos++
		}
	}
	report.Valid = report.Criticals == 0
	return report
}
