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

/*
Package mxql is a static analyzer for MXQL, the line-oriented pipeline
query language used to pull metrics out of monitoring categories.

The analyzer parses a query into its command pipeline, validates the
structure and ordering of the commands, scores likely performance
problems, and can synthesize fixture data so a query runs without a
live data source. It never executes queries and needs no connection to
a monitoring backend.

# Getting started

Validate a query and inspect the report:

	package main

	import (
		"fmt"
		"github.com/rulego/mxql"
	)

	func main() {
		m := mxql.New()

		report := m.Validate(`
	CATEGORY db_postgresql
	TAGLOAD
	FILTER {key: "cpu", cmp: "gt", value: 80}
	GROUP {pk: "oname", timeunit: "5m"}
	UPDATE {key: "cpu", value: "avg"}
	ORDER {key: "cpu", sort: "desc"}
	LIMIT 10
	`)

		fmt.Println(report.Summary())
		for _, issue := range report.Issues {
			fmt.Println(issue)
		}
	}

A report is always produced: any UTF-8 input parses into some command
sequence, and problems surface as issues rather than errors. Issues
carry one of three severities. Critical marks a query the server would
reject or silently mishandle, Warning marks a likely mistake or
performance hazard, Info is advisory. A query is valid when it has no
Critical issues.

# Severity rules

The semantic pass enforces command ordering and dependencies:

	TAGLOAD                          # Critical: loader before CATEGORY
	CATEGORY db_postgresql

	CATEGORY db_postgresql
	TAGLOAD
	UPDATE {key: "cpu", value: "avg"}  # Critical: UPDATE without GROUP

	CATEGORY db_postgresql
	TAGLOAD
	LIMIT 10                         # Warning: LIMIT without ORDER

Performance heuristics flag filter placement, SELECT *, unbounded
result sets, too-fine GROUP granularity over long time ranges, and
aggregations that could be combined.

# Category metadata

With a catalog configured, field names are checked against the
category definition:

	finder, err := catalog.OpenDir("./categories")
	if err != nil {
		panic(err)
	}
	m := mxql.New(mxql.WithCatalog(finder))

Unknown fields produce Info issues only; catalog data may be stale and
never blocks validation.

# Test data synthesis

GenerateTestQuery wraps a query with an ADDROW fixture block so it can
be executed without touching a live source:

	fmt.Println(m.GenerateTestQuery(`
	CATEGORY db_postgresql
	TAGLOAD
	SELECT [oname, cpu]
	`))

The output prepends a SUB block of synthetic rows covering every field
the query references and splices it into the pipeline with an APPEND
right after the loading stage.
*/
package mxql
