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

// semantic.go enforces the ordering and dependency rules between pipeline
// stages: what must come before what, and which names must already exist.
package validator

import (
	"fmt"
	"strings"

	"github.com/rulego/mxql/parser"
	"github.com/rulego/mxql/types"
)

// scopeState is the forward state machine for one scope. Flags are sticky
// for the whole scope: a second GROUP later in the scope does not reset
// ordering or aggregation tracking.
type scopeState struct {
	scope       string
	sawCategory bool
	sawLoader   bool
	sawGroup    bool
	sawOrder    bool
	sawLimit    bool
	selectCount int
	// visible holds subquery names referencable at the current position:
	// inherited from enclosing scopes plus blocks defined earlier here.
	visible map[string]bool
	// parameterized is true when the query binds its category through a
	// runtime parameter, which relaxes the source-selection ordering rule.
	parameterized bool
}

// checkSemantics runs the rule engine over one scope and recurses into
// subquery blocks in definition order.
func checkSemantics(q *types.Query, scope string, inherited map[string]bool, topLevel bool, issues *[]*types.Issue) {
	st := &scopeState{
		scope:         scope,
		visible:       make(map[string]bool, len(inherited)),
		parameterized: isCategoryParameterized(q),
	}
	for name := range inherited {
		st.visible[name] = true
	}

	for _, cmd := range q.Commands {
		st.observe(cmd, issues)
	}

	if topLevel {
		checkHasLoader(q, issues)
	}

	// Subquery scopes see every name defined before their own opener.
	visibleSoFar := make(map[string]bool, len(inherited))
	for name := range inherited {
		visibleSoFar[name] = true
	}
	for _, cmd := range q.Commands {
		if cmd.Known && cmd.Name == "SUB" {
			name := parser.SubqueryID(cmd)
			if sub, ok := q.Subqueries[name]; ok {
				checkSemantics(sub, name, visibleSoFar, false, issues)
			}
			visibleSoFar[name] = true
		}
	}
}

// observe applies the transition rules for one command, in document order.
func (st *scopeState) observe(cmd *types.Command, issues *[]*types.Issue) {
	if !cmd.Known {
		return
	}
	spec, _ := parser.LookupCommand(cmd.Name)

	switch spec.Role {
	case parser.RoleSource:
		st.sawCategory = true

	case parser.RoleLoader:
		if !st.sawCategory && !st.parameterized {
			st.addIssue(issues, &types.Issue{
				Severity:   types.Critical,
				Code:       types.CodeLoaderBeforeCategory,
				Message:    fmt.Sprintf("%s before any CATEGORY; there is no source to load from", cmd.Name),
				Suggestion: "put a CATEGORY command before the data loader",
			}, cmd)
		}
		st.sawLoader = true

	case parser.RoleGroup:
		st.sawGroup = true
		st.checkGroupKeys(cmd, issues)

	case parser.RoleAggregate:
		if !st.sawGroup {
			st.addIssue(issues, &types.Issue{
				Severity:   types.Critical,
				Code:       types.CodeUpdateWithoutGroup,
				Message:    "UPDATE without a preceding GROUP; there are no buckets to aggregate",
				Suggestion: "add a GROUP command before UPDATE",
			}, cmd)
		}

	case parser.RoleOrder:
		st.sawOrder = true

	case parser.RoleLimit:
		if !st.sawOrder && !st.sawLimit {
			st.addIssue(issues, &types.Issue{
				Severity:   types.Warning,
				Code:       types.CodeLimitWithoutOrder,
				Message:    "LIMIT without an explicit ORDER; the kept rows are non-deterministic",
				Suggestion: "add an ORDER command before LIMIT for predictable top-N results",
			}, cmd)
		}
		st.sawLimit = true

	case parser.RoleProjection:
		st.selectCount++
		if st.selectCount > 1 {
			st.addIssue(issues, &types.Issue{
				Severity:   types.Info,
				Code:       types.CodeDuplicateSelect,
				Message:    "more than one SELECT in this scope; only the final projection affects the output",
				Suggestion: "merge the projections into a single SELECT",
			}, cmd)
		}

	case parser.RoleSubRef:
		name := cmd.Payload.GetText("query")
		if name != "" && !st.visible[name] {
			st.addIssue(issues, &types.Issue{
				Severity:   types.Critical,
				Code:       types.CodeUndefinedSubquery,
				Message:    fmt.Sprintf("%s references subquery %q which is not defined at this point", cmd.Name, name),
				Suggestion: fmt.Sprintf("define SUB {id: %s} ... END before referencing it", name),
			}, cmd)
		}

	case parser.RoleSubOpen:
		st.visible[parser.SubqueryID(cmd)] = true
	}
}

// checkGroupKeys rejects GROUP payloads written in UPDATE syntax. GROUP
// buckets by pk/timeunit; key/value belong to UPDATE.
func (st *scopeState) checkGroupKeys(cmd *types.Command, issues *[]*types.Issue) {
	if _, ok := cmd.Payload.Get("key"); ok {
		st.addIssue(issues, &types.Issue{
			Severity:   types.Critical,
			Code:       types.CodeGroupInvalidKey,
			Message:    "GROUP uses 'key'; grouping keys are declared with 'pk'",
			Suggestion: `use GROUP {pk: "field"} or GROUP {timeunit: "5m", pk: "field"}`,
		}, cmd)
	}
	if _, ok := cmd.Payload.Get("value"); ok {
		st.addIssue(issues, &types.Issue{
			Severity:   types.Critical,
			Code:       types.CodeGroupInvalidKey,
			Message:    "GROUP uses 'value'; that is UPDATE syntax, not grouping",
			Suggestion: "move the aggregation into an UPDATE command after GROUP",
		}, cmd)
	}
}

func (st *scopeState) addIssue(issues *[]*types.Issue, issue *types.Issue, cmd *types.Command) {
	issue.CommandIndex = cmd.Index
	issue.Line = cmd.Line
	issue.Scope = st.scope
	*issues = append(*issues, issue)
}

// checkHasLoader flags a top-level query that never loads any data.
// Queries built entirely from SUB blocks are exempt: the blocks carry
// their own loaders or literal rows.
func checkHasLoader(q *types.Query, issues *[]*types.Issue) {
	if len(q.Commands) == 0 {
		return
	}
	for _, cmd := range q.Commands {
		if !cmd.Known {
			continue
		}
		spec, _ := parser.LookupCommand(cmd.Name)
		switch spec.Role {
		case parser.RoleLoader, parser.RoleLiteralData, parser.RoleSubRef, parser.RoleSubOpen:
			return
		}
	}
	*issues = append(*issues, &types.Issue{
		Severity:     types.Critical,
		Code:         types.CodeMissingLoader,
		Message:      "query never loads data (no TAGLOAD, FLEX-LOAD, ADDROW or APPEND)",
		CommandIndex: 0,
		Line:         q.Commands[0].Line,
		Suggestion:   "add TAGLOAD after the CATEGORY command",
	})
}

// isCategoryParameterized reports whether any payload references the
// category through a $-parameter, meaning the source is bound at runtime.
func isCategoryParameterized(q *types.Query) bool {
	for _, cmd := range q.Commands {
		if strings.Contains(cmd.Raw, "$category") {
			return true
		}
	}
	return false
}
