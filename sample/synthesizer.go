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

package sample

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/spf13/cast"

	"github.com/rulego/mxql/logger"
	"github.com/rulego/mxql/parser"
	"github.com/rulego/mxql/types"
)

// DefaultRows is how many synthetic rows a synthesizer produces unless
// configured otherwise.
const DefaultRows = 3

// baseTimestamp anchors synthetic time values (ms epoch). Fixed so
// generated fixtures are reproducible.
const baseTimestamp = int64(1700000000000)

// timestampStep is the gap between consecutive synthetic rows: one
// minute, the common collection interval.
const timestampStep = int64(60000)

// Synthesizer builds synthetic rows for a parsed query.
type Synthesizer struct {
	rows int
}

// NewSynthesizer creates a synthesizer emitting n rows per request.
// Non-positive n falls back to DefaultRows.
func NewSynthesizer(n int) *Synthesizer {
	if n <= 0 {
		n = DefaultRows
	}
	return &Synthesizer{rows: n}
}

// Rows synthesizes records covering every field the query references.
// Values are distinct per row: numeric fields vary monotonically, string
// fields are labelled, and the time field strictly increases. After
// generation the rows are adjusted so at least one row satisfies each
// simple filter condition, otherwise the fixture would exercise an empty
// pipeline.
func (s *Synthesizer) Rows(q *types.Query) ([]types.SyntheticRow, []string) {
	refs := ExtractFields(q)

	// The executor populates time/oid/oname on every record, so fixtures
	// carry them too even when the query never names them.
	names := []string{"time", "oid", "oname"}
	numeric := map[string]bool{}
	for _, ref := range refs {
		if ref.Name != "time" && ref.Name != "oid" && ref.Name != "oname" {
			names = append(names, ref.Name)
		}
		if ref.Numeric {
			numeric[ref.Name] = true
		}
	}

	rows := make([]types.SyntheticRow, s.rows)
	for i := range rows {
		row := types.SyntheticRow{}
		for _, name := range names {
			row[name] = sampleValue(name, i, numeric[name])
		}
		rows[i] = row
	}

	s.satisfyFilters(q, rows)
	return rows, names
}

// sampleValue guesses a plausible value for a field by its name, falling
// back to the usage-based type guess.
func sampleValue(name string, row int, numeric bool) interface{} {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "time"):
		return baseTimestamp + int64(row)*timestampStep
	case lower == "oid" || lower == "id":
		return int64(1000 + row)
	case strings.Contains(lower, "name"):
		return fmt.Sprintf("instance-%d", row+1)
	case strings.Contains(lower, "cpu"):
		return int64(50 + row*10)
	case strings.Contains(lower, "mem"):
		return int64(60 + row*5)
	case strings.Contains(lower, "count"):
		return int64(100 + row*10)
	case strings.Contains(lower, "pct") || strings.Contains(lower, "percent"):
		return int64(70 + row)
	case numeric:
		return int64((row + 1) * 10)
	default:
		return fmt.Sprintf("sample-%d", row+1)
	}
}

// comparators maps MXQL filter operators to expression operators.
var comparators = map[string]string{
	"eq": "==",
	"=":  "==",
	"==": "==",
	"ne": "!=",
	"!=": "!=",
	"gt": ">",
	">":  ">",
	"ge": ">=",
	">=": ">=",
	"lt": "<",
	"<":  "<",
	"le": "<=",
	"<=": "<=",
}

// satisfyFilters checks every simple FILTER condition against the rows
// and nudges the first row when no row passes.
func (s *Synthesizer) satisfyFilters(q *types.Query, rows []types.SyntheticRow) {
	if len(rows) == 0 {
		return
	}
	for _, f := range collectFilters(q) {
		program, err := compileFilter(f)
		if err != nil {
			logger.Debug("skip filter on %q: %v", f.key, err)
			continue
		}
		if anyRowMatches(program, rows) {
			continue
		}
		rows[0][f.key] = f.passingValue()
		if !anyRowMatches(program, rows) {
			logger.Debug("could not satisfy filter on %q", f.key)
		}
	}
}

// filterCond is one simple key/cmp/value filter condition.
type filterCond struct {
	key   string
	cmp   string
	value *types.Value
}

func collectFilters(q *types.Query) []filterCond {
	var out []filterCond
	for _, cmd := range q.Commands {
		if !cmd.Known || cmd.Payload == nil {
			continue
		}
		if cmd.Name == "FILTER" {
			key := cmd.Payload.GetText("key")
			cmp := strings.ToLower(cmd.Payload.GetText("cmp"))
			value, ok := cmd.Payload.Get("value")
			if key == "" || !ok {
				continue
			}
			if cmp == "" {
				cmp = "eq"
			}
			out = append(out, filterCond{key: key, cmp: cmp, value: value})
		}
		if cmd.Name == "SUB" {
			// Filters inside blocks apply to the same fixture rows.
			if sub, ok := q.Subqueries[parser.SubqueryID(cmd)]; ok {
				out = append(out, collectFilters(sub)...)
			}
		}
	}
	return out
}

// compileFilter builds an executable predicate for the condition.
// Undefined variables are allowed so a row missing the field simply
// fails the predicate instead of erroring.
func compileFilter(f filterCond) (*vm.Program, error) {
	op, ok := comparators[f.cmp]
	if !ok {
		return nil, fmt.Errorf("unsupported comparator %q", f.cmp)
	}
	var literal string
	if num, err := cast.ToFloat64E(f.value.Text()); err == nil {
		literal = cast.ToString(num)
	} else {
		literal = fmt.Sprintf("%q", f.value.Text())
	}
	return expr.Compile(
		fmt.Sprintf("%s %s %s", f.key, op, literal),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
}

func anyRowMatches(program *vm.Program, rows []types.SyntheticRow) bool {
	for _, row := range rows {
		env := make(map[string]interface{}, len(row))
		for k, v := range row {
			if n, err := cast.ToFloat64E(v); err == nil {
				env[k] = n
			} else {
				env[k] = v
			}
		}
		result, err := expr.Run(program, env)
		if err != nil {
			continue
		}
		if pass, ok := result.(bool); ok && pass {
			return true
		}
	}
	return false
}

// passingValue produces a value that satisfies the condition.
func (f filterCond) passingValue() interface{} {
	num, err := cast.ToFloat64E(f.value.Text())
	if err != nil {
		// String comparison: equality wants the literal itself, anything
		// else wants a different string.
		if f.cmp == "ne" || f.cmp == "!=" {
			return f.value.Text() + "-x"
		}
		return f.value.Text()
	}
	switch f.cmp {
	case "gt", ">":
		return int64(num) + 1
	case "lt", "<":
		return int64(num) - 1
	case "ne", "!=":
		return int64(num) + 1
	default:
		return int64(num)
	}
}
