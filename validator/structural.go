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

package validator

import (
	"fmt"

	"github.com/rulego/mxql/parser"
	"github.com/rulego/mxql/types"
)

// checkStructure verifies every command in every scope has a payload the
// executor could accept: parse success, required payloads present, and
// the right payload shape. It evaluates commands in isolation only and
// produces Critical issues exclusively; later passes run regardless.
func checkStructure(q *types.Query, scope string, issues *[]*types.Issue) {
	for _, cmd := range q.Commands {
		checkCommandStructure(cmd, scope, issues)
	}
	for _, name := range q.SubNames {
		checkStructure(q.Subqueries[name], name, issues)
	}
}

func checkCommandStructure(cmd *types.Command, scope string, issues *[]*types.Issue) {
	// The tokenizer already flagged unbalanced payloads.
	if cmd.ParseErr != nil && !cmd.Unbalanced {
		*issues = append(*issues, &types.Issue{
			Severity:     types.Critical,
			Code:         types.CodeMalformedPayload,
			Message:      fmt.Sprintf("%s payload does not parse: %v", cmd.Name, cmd.ParseErr),
			CommandIndex: cmd.Index,
			Line:         cmd.Line,
			Scope:        scope,
		})
		return
	}
	if !cmd.Known || cmd.Unbalanced {
		return
	}

	spec, _ := parser.LookupCommand(cmd.Name)
	if spec.Required && !cmd.HasPayload() {
		*issues = append(*issues, &types.Issue{
			Severity:     types.Critical,
			Code:         types.CodeMissingPayload,
			Message:      fmt.Sprintf("%s requires a payload", cmd.Name),
			CommandIndex: cmd.Index,
			Line:         cmd.Line,
			Scope:        scope,
			Suggestion:   payloadHint(spec),
		})
		return
	}
	if cmd.Payload == nil {
		return
	}

	ok := true
	switch spec.Shape {
	case parser.PayloadNone:
		ok = false
	case parser.PayloadObject:
		ok = cmd.Payload.Kind == types.KindObject
	case parser.PayloadArray:
		ok = cmd.Payload.Kind == types.KindArray
	case parser.PayloadScalar:
		ok = cmd.Payload.IsScalar()
	case parser.PayloadAny:
		ok = cmd.Payload.IsScalar() || cmd.Payload.Kind == types.KindObject
	}
	if !ok {
		code := types.CodeMalformedPayload
		if spec.Shape == parser.PayloadNone {
			code = types.CodeUnexpectedPayload
		}
		*issues = append(*issues, &types.Issue{
			Severity:     types.Critical,
			Code:         code,
			Message:      fmt.Sprintf("%s does not accept a %s payload", cmd.Name, cmd.Payload.Kind),
			CommandIndex: cmd.Index,
			Line:         cmd.Line,
			Scope:        scope,
			Suggestion:   payloadHint(spec),
		})
		return
	}

	// LIMIT must carry a number; any other scalar cannot execute.
	if cmd.Name == "LIMIT" && cmd.Payload.Kind != types.KindNumber {
		*issues = append(*issues, &types.Issue{
			Severity:     types.Critical,
			Code:         types.CodeMalformedPayload,
			Message:      fmt.Sprintf("LIMIT requires a numeric payload, found %q", cmd.Payload.Text()),
			CommandIndex: cmd.Index,
			Line:         cmd.Line,
			Scope:        scope,
			Suggestion:   "use a positive integer, e.g. LIMIT 10",
		})
	}
}

func payloadHint(spec parser.CommandSpec) string {
	switch spec.Shape {
	case parser.PayloadNone:
		return spec.Name + " takes no payload"
	case parser.PayloadObject:
		return spec.Name + " expects an object payload: " + spec.Name + " {...}"
	case parser.PayloadArray:
		return spec.Name + " expects an array payload: " + spec.Name + " [...]"
	case parser.PayloadScalar:
		return spec.Name + " expects a single value"
	default:
		return ""
	}
}
