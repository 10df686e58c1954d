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

package mxql

import (
	"github.com/rulego/mxql/catalog"
	"github.com/rulego/mxql/parser"
	"github.com/rulego/mxql/sample"
	"github.com/rulego/mxql/types"
	"github.com/rulego/mxql/validator"
)

// Mxql is the analyzer facade. It bundles the parser, the validation
// passes and the sample-data synthesizer behind one configuration.
//
// Usage:
//
//	m := mxql.New()
//	report := m.Validate("CATEGORY db_postgresql\nTAGLOAD\nSELECT [cpu]")
//	fmt.Println(report.Summary())
//
// An Mxql instance is immutable after New and safe for concurrent use:
// every call builds its own query, issue list and synthesizer state.
type Mxql struct {
	finder     catalog.Finder
	sampleRows int
}

// New creates an analyzer. Behavior is customized through options:
//
//	// with category metadata, so field names are checked
//	finder, _ := catalog.OpenDir("./categories")
//	m := mxql.New(mxql.WithCatalog(finder))
//
//	// five fixture rows instead of three
//	m := mxql.New(mxql.WithSampleRows(5))
func New(options ...Option) *Mxql {
	m := &Mxql{sampleRows: sample.DefaultRows}
	for _, option := range options {
		option(m)
	}
	return m
}

// Parse tokenizes and assembles the query without validating it. The
// returned issues cover structure and style only.
func (m *Mxql) Parse(query string) (*types.Query, []*types.Issue) {
	return parser.NewParser(query).Parse()
}

// Validate runs the full analysis: parse, structural pass, semantic rule
// engine, performance heuristics and (when a catalog is configured)
// field checks. It never fails: any UTF-8 input produces a report, worst
// case one dominated by Critical issues.
func (m *Mxql) Validate(query string) *types.Report {
	q, parseIssues := m.Parse(query)
	return validator.New(m.finder).Validate(q, parseIssues)
}

// ExtractFields returns the distinct fields the query references, with
// the role and position each was first seen in.
func (m *Mxql) ExtractFields(query string) []types.FieldReference {
	q, _ := m.Parse(query)
	return sample.ExtractFields(q)
}

// SynthesizeRows builds fixture rows covering the query's referenced
// fields, plus the field order they should be emitted in.
func (m *Mxql) SynthesizeRows(query string) ([]types.SyntheticRow, []string) {
	q, _ := m.Parse(query)
	return sample.NewSynthesizer(m.sampleRows).Rows(q)
}

// GenerateTestQuery wraps the query with an injected fixture block so it
// can be executed without a live data source: a SUB block of ADDROW rows
// plus an APPEND after the loading stage. The original command order is
// preserved.
func (m *Mxql) GenerateTestQuery(query string) string {
	q, _ := m.Parse(query)
	rows, order := sample.NewSynthesizer(m.sampleRows).Rows(q)
	return sample.GenerateTestQuery(q, rows, order)
}
