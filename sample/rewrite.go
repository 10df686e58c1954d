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

// rewrite.go wraps a query with an injected literal-data block so it can
// run without touching a live source: a SUB block of ADDROW fixtures is
// prepended and an APPEND pulls it into the original pipeline right
// after the loading stage. Original command order is left untouched.
package sample

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rulego/mxql/parser"
	"github.com/rulego/mxql/types"
)

// fixtureBlockID is the preferred name of the injected block.
const fixtureBlockID = "test_data"

// GenerateTestQuery renders the fixture-wrapped form of the query.
// rows and fieldOrder come from Synthesizer.Rows.
func GenerateTestQuery(q *types.Query, rows []types.SyntheticRow, fieldOrder []string) string {
	blockID := fixtureBlockID
	for n := 2; ; n++ {
		if _, taken := q.Subqueries[blockID]; !taken {
			break
		}
		blockID = fmt.Sprintf("%s_%d", fixtureBlockID, n)
	}

	var b strings.Builder
	b.WriteString("# test fixture: synthetic rows injected so the query runs without a live source\n")
	fmt.Fprintf(&b, "SUB {id: %s}\n", blockID)
	for _, row := range rows {
		b.WriteString("ADDROW ")
		b.WriteString(emitRow(row, fieldOrder))
		b.WriteString("\n")
	}
	b.WriteString("END\n\n")

	appendAfter := appendPosition(q)
	appended := false
	for i, cmd := range q.Commands {
		if appendAfter < 0 && !appended {
			fmt.Fprintf(&b, "APPEND {query: %s}\n", blockID)
			appended = true
		}
		emitCommand(&b, q, cmd)
		if i == appendAfter {
			fmt.Fprintf(&b, "APPEND {query: %s}\n", blockID)
			appended = true
		}
	}
	if !appended {
		fmt.Fprintf(&b, "APPEND {query: %s}\n", blockID)
	}
	return b.String()
}

// appendPosition picks the command index the APPEND goes after: the
// first loader, else the first CATEGORY, else the very top (-1).
func appendPosition(q *types.Query) int {
	category := -1
	for _, cmd := range q.Commands {
		if !cmd.Known {
			continue
		}
		spec, _ := parser.LookupCommand(cmd.Name)
		if spec.Role == parser.RoleLoader {
			return cmd.Index
		}
		if spec.Role == parser.RoleSource && category < 0 {
			category = cmd.Index
		}
	}
	return category
}

// emitCommand writes one original command back out, expanding SUB blocks
// with their body and END.
func emitCommand(b *strings.Builder, q *types.Query, cmd *types.Command) {
	if cmd.Known && cmd.Name == "SUB" {
		fmt.Fprintf(b, "%s %s\n", cmd.Name, cmd.Raw)
		if sub, ok := q.Subqueries[parser.SubqueryID(cmd)]; ok {
			for _, inner := range sub.Commands {
				emitCommand(b, sub, inner)
			}
		}
		b.WriteString("END\n")
		return
	}
	if cmd.Raw == "" {
		b.WriteString(cmd.Name + "\n")
		return
	}
	fmt.Fprintf(b, "%s %s\n", cmd.Name, cmd.Raw)
}

// emitRow renders one ADDROW payload, keys in fixture field order.
func emitRow(row types.SyntheticRow, fieldOrder []string) string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for _, name := range fieldOrder {
		val, ok := row[name]
		if !ok {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(emitValue(val))
	}
	b.WriteByte('}')
	return b.String()
}

func emitValue(val interface{}) string {
	switch v := val.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return "'" + strings.ReplaceAll(fmt.Sprintf("%v", v), "'", "\\'") + "'"
	}
}
