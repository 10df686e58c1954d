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

// fieldcheck.go verifies referenced field names against the category
// metadata catalog. The catalog is optional and possibly stale, so
// nothing here rises above Info: a missing catalog or an unknown field
// never blocks validation.
package validator

import (
	"fmt"
	"strings"

	"github.com/rulego/mxql/catalog"
	"github.com/rulego/mxql/sample"
	"github.com/rulego/mxql/types"
)

// builtinFields exist on every record regardless of category.
var builtinFields = map[string]bool{
	"time":  true,
	"oid":   true,
	"oname": true,
}

// checkFields resolves the query's literal category and flags referenced
// fields the catalog does not know about.
func checkFields(q *types.Query, finder catalog.Finder, issues *[]*types.Issue) {
	if finder == nil {
		return
	}
	cmd, name := literalCategory(q)
	if cmd == nil {
		return
	}

	meta, err := finder.Lookup(name)
	if err != nil {
		*issues = append(*issues, &types.Issue{
			Severity:     types.Info,
			Code:         types.CodeCategoryUnavailable,
			Message:      fmt.Sprintf("no metadata for category %q; field names were not checked", name),
			CommandIndex: cmd.Index,
			Line:         cmd.Line,
		})
		return
	}
	if len(meta.Fields) == 0 && len(meta.Tags) == 0 {
		return
	}

	for _, ref := range sample.ExtractFields(q) {
		if builtinFields[ref.Name] || strings.ContainsAny(ref.Name, "($") {
			continue
		}
		if !meta.HasField(ref.Name) {
			*issues = append(*issues, &types.Issue{
				Severity:     types.Info,
				Code:         types.CodeUnknownField,
				Message:      fmt.Sprintf("field %q is not listed for category %q", ref.Name, name),
				CommandIndex: ref.Index,
				Line:         ref.Line,
				Scope:        ref.Scope,
				Suggestion:   "check the field name against the category metadata",
			})
		}
	}
}

// literalCategory returns the first CATEGORY command carrying a literal
// name. Parameterized or object-form categories cannot be resolved
// statically.
func literalCategory(q *types.Query) (*types.Command, string) {
	for _, cmd := range q.Commands {
		if !cmd.Known || cmd.Name != "CATEGORY" || cmd.Payload == nil {
			continue
		}
		var name string
		switch cmd.Payload.Kind {
		case types.KindIdent, types.KindString:
			name = cmd.Payload.Str
		case types.KindObject:
			name = cmd.Payload.GetText("name")
		}
		if name == "" || strings.HasPrefix(name, "$") {
			return nil, ""
		}
		return cmd, name
	}
	return nil, ""
}
