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

// Package sample synthesizes test data for a query: it extracts the
// fields the query references, builds plausible rows for them, and
// rewrites the query to read from the injected literal data so it can be
// exercised without a live data source.
package sample

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/rulego/mxql/parser"
	"github.com/rulego/mxql/types"
)

// extractor collects distinct field references in document order.
type extractor struct {
	order []string
	refs  map[string]*types.FieldReference
}

// ExtractFields scans projection, filter-key, group-key, aggregate-key
// and order-key positions of every command in every scope. Each distinct
// field is reported once, with the role and position it was first seen
// in; the numeric flag is upgraded whenever later evidence shows numeric
// use. The result is stable for identical input.
func ExtractFields(q *types.Query) []types.FieldReference {
	ex := &extractor{refs: map[string]*types.FieldReference{}}
	ex.walk(q, "")

	out := make([]types.FieldReference, 0, len(ex.order))
	for _, name := range ex.order {
		out = append(out, *ex.refs[name])
	}
	return out
}

func (ex *extractor) walk(q *types.Query, scope string) {
	for _, cmd := range q.Commands {
		if !cmd.Known || cmd.Payload == nil {
			continue
		}
		switch cmd.Name {
		case "SELECT":
			for _, item := range cmd.Payload.Items {
				name := item.Text()
				if name == "" || name == "*" {
					continue
				}
				ex.add(name, types.RoleSelect, cmd, scope, false)
			}
		case "FILTER":
			if key := cmd.Payload.GetText("key"); key != "" {
				ex.add(key, types.RoleFilter, cmd, scope, filterIsNumeric(cmd.Payload))
			}
		case "GROUP":
			for _, pk := range listField(cmd.Payload, "pk") {
				ex.add(pk, types.RoleGroup, cmd, scope, false)
			}
		case "UPDATE":
			if key := cmd.Payload.GetText("key"); key != "" {
				numeric := parser.LookupIsNumericAggregateFunc(cmd.Payload.GetText("value"))
				ex.add(key, types.RoleUpdate, cmd, scope, numeric)
			}
		case "ORDER":
			for _, key := range listField(cmd.Payload, "key") {
				ex.add(key, types.RoleOrder, cmd, scope, false)
			}
		case "SUB":
			name := parser.SubqueryID(cmd)
			if sub, ok := q.Subqueries[name]; ok {
				ex.walk(sub, name)
			}
		}
	}
}

func (ex *extractor) add(name string, role types.FieldRole, cmd *types.Command, scope string, numeric bool) {
	if ref, ok := ex.refs[name]; ok {
		// First sighting wins for role and position; numeric evidence
		// accumulates.
		if numeric {
			ref.Numeric = true
		}
		return
	}
	ex.order = append(ex.order, name)
	ex.refs[name] = &types.FieldReference{
		Name:    name,
		Role:    role,
		Line:    cmd.Line,
		Index:   cmd.Index,
		Scope:   scope,
		Numeric: numeric,
	}
}

// filterIsNumeric reports whether the filter compares its key against a
// numeric literal.
func filterIsNumeric(payload *types.Value) bool {
	val, ok := payload.Get("value")
	if !ok {
		return false
	}
	if val.Kind == types.KindNumber {
		return true
	}
	_, err := cast.ToFloat64E(val.Text())
	return err == nil
}

// listField reads a payload entry that may be a single name or an array
// of names.
func listField(payload *types.Value, key string) []string {
	val, ok := payload.Get(key)
	if !ok {
		return nil
	}
	if val.Kind == types.KindArray {
		var names []string
		for _, item := range val.Items {
			if text := item.Text(); text != "" {
				names = append(names, text)
			}
		}
		return names
	}
	if text := val.Text(); text != "" {
		return []string{text}
	}
	return nil
}

// HasTimeBucketing reports whether any GROUP in any scope buckets by a
// time interval.
func HasTimeBucketing(q *types.Query) bool {
	for _, cmd := range q.Commands {
		if cmd.Known && cmd.Name == "GROUP" {
			if strings.TrimSpace(cmd.Payload.GetText("timeunit")) != "" {
				return true
			}
		}
		if cmd.Known && cmd.Name == "SUB" {
			if sub, ok := q.Subqueries[parser.SubqueryID(cmd)]; ok && HasTimeBucketing(sub) {
				return true
			}
		}
	}
	return false
}
