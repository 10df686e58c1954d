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

// heuristics.go scores performance risk. Everything here is advisory:
// Warning or Info, never Critical, and never affects validity.
package validator

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/rulego/mxql/parser"
	"github.com/rulego/mxql/types"
)

// excessiveGranularityFactor is the bucket-count threshold: a GROUP
// timeunit producing more than this many buckets over the declared time
// range is considered needlessly fine.
const excessiveGranularityFactor = 500

// checkPerformance runs the advisory heuristics over one scope and
// recurses into subquery blocks. inherited is the enclosing scope's time
// range; a block that declares no TIMEPAST of its own is judged against
// it.
func checkPerformance(q *types.Query, scope string, topLevel bool, inherited time.Duration, issues *[]*types.Issue) {
	var firstFilter, firstGroup *types.Command
	var updates []*types.Command
	hasLimit, hasUpdate := false, false
	timeRange := detectTimeRange(q)
	if timeRange <= 0 {
		timeRange = inherited
	}

	for _, cmd := range q.Commands {
		if !cmd.Known {
			continue
		}
		spec, _ := parser.LookupCommand(cmd.Name)
		switch spec.Role {
		case parser.RoleFilter:
			if firstFilter == nil && cmd.Name == "FILTER" {
				firstFilter = cmd
			}
		case parser.RoleGroup:
			if firstGroup == nil {
				firstGroup = cmd
			}
			checkGranularity(cmd, scope, timeRange, issues)
		case parser.RoleAggregate:
			hasUpdate = true
			updates = append(updates, cmd)
		case parser.RoleLimit:
			hasLimit = true
		case parser.RoleProjection:
			checkSelectAll(cmd, scope, issues)
		}
	}

	if firstFilter != nil && firstGroup != nil && firstFilter.Index > firstGroup.Index {
		*issues = append(*issues, &types.Issue{
			Severity:     types.Warning,
			Code:         types.CodeFilterAfterGroup,
			Message:      "FILTER after GROUP processes a larger dataset than necessary",
			CommandIndex: firstFilter.Index,
			Line:         firstFilter.Line,
			Scope:        scope,
			Suggestion:   "move FILTER before GROUP so rows are dropped before bucketing",
		})
	}

	if topLevel && !hasLimit && !hasUpdate && len(q.Commands) > 0 {
		last := q.Commands[len(q.Commands)-1]
		*issues = append(*issues, &types.Issue{
			Severity:     types.Info,
			Code:         types.CodeUnboundedResult,
			Message:      "query has no LIMIT and no aggregation; the result set is unbounded",
			CommandIndex: last.Index,
			Line:         last.Line,
			Suggestion:   "add ORDER plus LIMIT to cap the result",
		})
	}

	checkCombinableUpdates(updates, scope, issues)

	for _, name := range q.SubNames {
		checkPerformance(q.Subqueries[name], name, false, timeRange, issues)
	}
}

// checkSelectAll flags a full-wildcard projection.
func checkSelectAll(cmd *types.Command, scope string, issues *[]*types.Issue) {
	if cmd.Payload == nil || cmd.Payload.Kind != types.KindArray {
		return
	}
	for _, item := range cmd.Payload.Items {
		if item.Kind == types.KindIdent && item.Str == "*" {
			*issues = append(*issues, &types.Issue{
				Severity:     types.Warning,
				Code:         types.CodeSelectAllFields,
				Message:      "SELECT [*] projects every field and moves more data than needed",
				CommandIndex: cmd.Index,
				Line:         cmd.Line,
				Scope:        scope,
				Suggestion:   "select only the fields the result actually uses",
			})
			return
		}
	}
}

// checkGranularity compares the GROUP timeunit against the declared time
// range (TIMEPAST). Without a declared range there is nothing to judge.
func checkGranularity(cmd *types.Command, scope string, timeRange time.Duration, issues *[]*types.Issue) {
	if timeRange <= 0 || cmd.Payload == nil {
		return
	}
	unit, ok := parseTimeUnit(cmd.Payload.GetText("timeunit"))
	if !ok || unit <= 0 {
		return
	}
	if buckets := timeRange / unit; buckets > excessiveGranularityFactor {
		*issues = append(*issues, &types.Issue{
			Severity:     types.Warning,
			Code:         types.CodeExcessiveTimeunit,
			Message:      fmt.Sprintf("GROUP timeunit %s over a %s range produces ~%d buckets", cmd.Payload.GetText("timeunit"), timeRange, buckets),
			CommandIndex: cmd.Index,
			Line:         cmd.Line,
			Scope:        scope,
			Suggestion:   "use a coarser timeunit for this time range",
		})
	}
}

// checkCombinableUpdates flags several UPDATEs of the same key with
// different functions: the executor recomputes the same buckets per pass.
func checkCombinableUpdates(updates []*types.Command, scope string, issues *[]*types.Issue) {
	seen := map[string]string{} // key -> first function
	flagged := map[string]bool{}
	for _, cmd := range updates {
		if cmd.Payload == nil {
			continue
		}
		key := cmd.Payload.GetText("key")
		fn := strings.ToLower(cmd.Payload.GetText("value"))
		if key == "" || fn == "" {
			continue
		}
		first, ok := seen[key]
		if !ok {
			seen[key] = fn
			continue
		}
		if first != fn && !flagged[key] {
			flagged[key] = true
			*issues = append(*issues, &types.Issue{
				Severity:     types.Info,
				Code:         types.CodeCombinableUpdates,
				Message:      fmt.Sprintf("multiple aggregations of %q (%s, %s); consider combining into one pass", key, first, fn),
				CommandIndex: cmd.Index,
				Line:         cmd.Line,
				Scope:        scope,
			})
		}
	}
}

// detectTimeRange reads the declared time range from a TIMEPAST command.
func detectTimeRange(q *types.Query) time.Duration {
	for _, cmd := range q.Commands {
		if cmd.Known && cmd.Name == "TIMEPAST" && cmd.Payload != nil {
			if d, ok := parseTimeUnit(cmd.Payload.Text()); ok {
				return d
			}
		}
	}
	return 0
}

// parseTimeUnit parses MXQL duration shorthand: 30s, 5m, 1h, 7d.
func parseTimeUnit(s string) (time.Duration, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if len(s) < 2 {
		return 0, false
	}
	unit := time.Duration(0)
	num := s[:len(s)-1]
	switch {
	case strings.HasSuffix(s, "ms"):
		unit, num = time.Millisecond, s[:len(s)-2]
	case strings.HasSuffix(s, "s"):
		unit = time.Second
	case strings.HasSuffix(s, "m"):
		unit = time.Minute
	case strings.HasSuffix(s, "h"):
		unit = time.Hour
	case strings.HasSuffix(s, "d"):
		unit = 24 * time.Hour
	default:
		return 0, false
	}
	n, err := cast.ToInt64E(num)
	if err != nil || n <= 0 {
		return 0, false
	}
	return time.Duration(n) * unit, true
}
