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

package types

// Command is one pipeline stage of a parsed query.
type Command struct {
	// Name is the command keyword in canonical upper-case form,
	// e.g. "CATEGORY", "TAGLOAD", "SELECT".
	Name string
	// Payload is the parsed payload value, nil when the command has none.
	Payload *Value
	// Raw is the payload exactly as it appeared in the source, used when
	// re-emitting the query.
	Raw string
	// ParseErr is set when the payload text could not be parsed; the
	// command still participates in later passes.
	ParseErr error
	// Line is the 1-based line the command starts on.
	Line int
	// Unbalanced is set when the payload's delimiters never closed and
	// the tokenizer recovered at the next command boundary.
	Unbalanced bool
	// Index is the position of the command within its owning scope.
	Index int
	// Known reports whether the name matched the command table.
	Known bool
}

// HasPayload reports whether the command carries any payload text.
func (c *Command) HasPayload() bool {
	return c.Raw != ""
}

// Query is an ordered command sequence plus the subquery blocks defined
// inside it. It is built append-only during parsing and read-only after.
type Query struct {
	Commands []*Command
	// Subqueries maps a SUB block id to its nested query.
	Subqueries map[string]*Query
	// SubNames keeps subquery definition order for deterministic walks.
	SubNames []string
}

// NewQuery returns an empty query.
func NewQuery() *Query {
	return &Query{Subqueries: map[string]*Query{}}
}

// Append adds a command, assigning its scope-local index.
func (q *Query) Append(cmd *Command) {
	cmd.Index = len(q.Commands)
	q.Commands = append(q.Commands, cmd)
}

// Register records a completed SUB block under its id. A duplicate id
// replaces the earlier definition, matching last-writer-wins execution.
func (q *Query) Register(name string, sub *Query) {
	if _, exists := q.Subqueries[name]; !exists {
		q.SubNames = append(q.SubNames, name)
	}
	q.Subqueries[name] = sub
}

// FieldRole is the position a field reference appeared in.
type FieldRole string

const (
	RoleSelect FieldRole = "select"
	RoleFilter FieldRole = "filter"
	RoleGroup  FieldRole = "group"
	RoleUpdate FieldRole = "update"
	RoleOrder  FieldRole = "order"
)

// FieldReference is a distinct field name seen in the query, with the
// role and position it was first seen in.
type FieldReference struct {
	Name string
	Role FieldRole
	// Line, Index and Scope locate the first reference.
	Line  int
	Index int
	Scope string
	// Numeric is the synthesizer's type guess: true when the field is
	// compared against a numeric literal or aggregated numerically.
	Numeric bool
}

// SyntheticRow is one synthesized record, field name to value.
type SyntheticRow map[string]interface{}
