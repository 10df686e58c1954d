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

// token.go defines the MXQL command table: every known command keyword,
// its pipeline role and the payload shape it expects.
package parser

import "strings"

// Role classifies what a command does in the pipeline.
type Role int

const (
	RoleUnknown Role = iota
	// RoleSource selects the data category to read from.
	RoleSource
	// RoleLoader loads records from the selected category.
	RoleLoader
	// RoleProjection narrows the field set.
	RoleProjection
	// RoleFilter drops records by condition.
	RoleFilter
	// RoleGroup buckets records by key and/or time interval.
	RoleGroup
	// RoleAggregate computes a summary function over grouped records.
	RoleAggregate
	// RoleOrder sorts records.
	RoleOrder
	// RoleLimit caps the number of output records.
	RoleLimit
	// RoleSubOpen opens a named subquery block.
	RoleSubOpen
	// RoleSubClose closes the current subquery block.
	RoleSubClose
	// RoleSubRef pulls a previously defined subquery in by name.
	RoleSubRef
	// RoleLiteralData appends a literal record.
	RoleLiteralData
	// RoleTimeRange declares the query time range.
	RoleTimeRange
	// RoleTransform is any other record reshaping stage.
	RoleTransform
)

// PayloadShape is the payload form a command expects.
type PayloadShape int

const (
	PayloadNone PayloadShape = iota
	PayloadObject
	PayloadArray
	PayloadScalar
	// PayloadAny accepts a scalar or an object.
	PayloadAny
)

// CommandSpec describes one known command keyword.
type CommandSpec struct {
	Name     string
	Role     Role
	Shape    PayloadShape
	Required bool
}

// commandTable lists every MXQL command the analyzer understands.
// Lookup is case-insensitive; Name is the canonical spelling.
var commandTable = []CommandSpec{
	{Name: "CATEGORY", Role: RoleSource, Shape: PayloadAny, Required: true},
	{Name: "TAGLOAD", Role: RoleLoader, Shape: PayloadNone},
	{Name: "FLEX-LOAD", Role: RoleLoader, Shape: PayloadObject, Required: true},
	{Name: "OID", Role: RoleFilter, Shape: PayloadArray, Required: true},
	{Name: "SELECT", Role: RoleProjection, Shape: PayloadArray, Required: true},
	{Name: "FILTER", Role: RoleFilter, Shape: PayloadObject, Required: true},
	{Name: "GROUP", Role: RoleGroup, Shape: PayloadObject, Required: true},
	{Name: "UPDATE", Role: RoleAggregate, Shape: PayloadObject, Required: true},
	{Name: "ORDER", Role: RoleOrder, Shape: PayloadObject, Required: true},
	{Name: "LIMIT", Role: RoleLimit, Shape: PayloadScalar, Required: true},
	{Name: "SUB", Role: RoleSubOpen, Shape: PayloadObject, Required: true},
	{Name: "END", Role: RoleSubClose, Shape: PayloadNone},
	{Name: "APPEND", Role: RoleSubRef, Shape: PayloadObject, Required: true},
	{Name: "JOIN", Role: RoleSubRef, Shape: PayloadObject, Required: true},
	{Name: "ADDROW", Role: RoleLiteralData, Shape: PayloadObject, Required: true},
	{Name: "TIMEPAST", Role: RoleTimeRange, Shape: PayloadScalar, Required: true},
	{Name: "TIMEADD", Role: RoleTransform, Shape: PayloadObject, Required: true},
	{Name: "CREATE", Role: RoleTransform, Shape: PayloadObject, Required: true},
	{Name: "DELETE", Role: RoleTransform, Shape: PayloadArray, Required: true},
	{Name: "RENAME", Role: RoleTransform, Shape: PayloadObject, Required: true},
	{Name: "FORMAT", Role: RoleTransform, Shape: PayloadObject, Required: true},
	{Name: "UNFOLD", Role: RoleTransform, Shape: PayloadArray, Required: true},
	{Name: "HVTEXT", Role: RoleTransform, Shape: PayloadObject, Required: true},
}

var commandIndex = func() map[string]CommandSpec {
	m := make(map[string]CommandSpec, len(commandTable))
	for _, spec := range commandTable {
		m[spec.Name] = spec
	}
	return m
}()

// LookupCommand resolves a keyword to its spec, case-insensitively.
func LookupCommand(name string) (CommandSpec, bool) {
	spec, ok := commandIndex[strings.ToUpper(name)]
	return spec, ok
}

// aggregateFunctions are UPDATE value functions that produce numbers.
var aggregateFunctions = map[string]bool{
	"COUNT": true,
	"SUM":   true,
	"AVG":   true,
	"MAX":   true,
	"MIN":   true,
	"FIRST": false,
	"LAST":  false,
	"MERGE": false,
	"STD":   true,
	"VAR":   true,
	"RATE":  true,
}

// LookupIsAggregateFunc reports whether ident names an aggregate function.
func LookupIsAggregateFunc(ident string) bool {
	_, ok := aggregateFunctions[strings.ToUpper(ident)]
	return ok
}

// LookupIsNumericAggregateFunc reports whether ident names an aggregate
// function whose result is numeric.
func LookupIsNumericAggregateFunc(ident string) bool {
	return aggregateFunctions[strings.ToUpper(ident)]
}

// SuggestCommand returns the closest known command for a misspelled
// keyword, or "" when nothing is close enough. Closeness is a simple
// edit distance capped at 2, which covers the typos people actually make
// (SELCT, GORUP, FITLER).
func SuggestCommand(name string) string {
	upper := strings.ToUpper(name)
	best := ""
	bestDist := 3
	for _, spec := range commandTable {
		d := editDistance(upper, spec.Name)
		if d < bestDist {
			bestDist = d
			best = spec.Name
		}
	}
	return best
}

func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min3(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
