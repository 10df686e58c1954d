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

// Package parser turns MXQL query text into an ordered command list.
// Parsing never fails for UTF-8 input: malformed pieces become structural
// issues and the remaining commands are still assembled, so later passes
// always have something to work with.
package parser

import (
	"fmt"
	"strings"

	"github.com/rulego/mxql/logger"
	"github.com/rulego/mxql/types"
)

// Parser assembles the token stream into a Query, handling SUB/END
// subquery scopes along the way.
type Parser struct {
	lexer  *Lexer
	issues []*types.Issue
}

// NewParser creates a parser over the given query text.
func NewParser(input string) *Parser {
	return &Parser{lexer: NewLexer(input)}
}

// scope is one open command list during assembly: the top-level query or
// a SUB block under construction.
type scope struct {
	name  string
	query *types.Query
	// openLine is the source line of the SUB opener, for diagnostics.
	openLine int
}

// Parse consumes the whole input and returns the assembled query plus
// every structural and style issue found during tokenizing and payload
// parsing. The returned query is complete even when issues exist.
func (p *Parser) Parse() (*types.Query, []*types.Issue) {
	root := &scope{query: types.NewQuery()}
	cur := root

	for {
		raw := p.lexer.Next()
		if raw == nil {
			break
		}

		spec, known := LookupCommand(raw.name)
		cmd := &types.Command{
			Name:       raw.name,
			Raw:        raw.payload,
			Line:       raw.line,
			Known:      known,
			Unbalanced: raw.unbalanced,
		}
		if known {
			cmd.Name = spec.Name
		}

		if known && spec.Role == RoleSubClose {
			if cur == root {
				p.addIssue(&types.Issue{
					Severity:   types.Critical,
					Code:       types.CodeUnmatchedEnd,
					Message:    "END without a matching SUB",
					Line:       raw.line,
					Scope:      cur.name,
					Suggestion: "remove the extra END or add a SUB block before it",
				})
				continue
			}
			root.query.Register(cur.name, cur.query)
			cur = root
			continue
		}

		p.parsePayload(cmd, cur)

		if known && spec.Role == RoleSubOpen {
			if cur != root {
				// Nested blocks are not supported; keep appending to the
				// open block so its commands are not lost.
				cur.query.Append(cmd)
				p.addIssue(&types.Issue{
					Severity:     types.Critical,
					Code:         types.CodeNestedSub,
					Message:      fmt.Sprintf("SUB inside SUB %q; nested blocks are not supported", cur.name),
					CommandIndex: cmd.Index,
					Line:         raw.line,
					Scope:        cur.name,
					Suggestion:   "close the current block with END before opening another SUB",
				})
				continue
			}
			root.query.Append(cmd)
			cur = &scope{name: SubqueryID(cmd), query: types.NewQuery(), openLine: raw.line}
			continue
		}

		cur.query.Append(cmd)
	}

	if cur != root {
		root.query.Register(cur.name, cur.query)
		p.addIssue(&types.Issue{
			Severity:   types.Critical,
			Code:       types.CodeUnclosedSub,
			Message:    fmt.Sprintf("SUB %q has no matching END; block closed at end of input", cur.name),
			Line:       cur.openLine,
			Suggestion: "add END after the last command of the block",
		})
	}

	logger.Debug("parsed %d top-level commands, %d subqueries, %d issues",
		len(root.query.Commands), len(root.query.Subqueries), len(p.issues))
	return root.query, p.issues
}

// parsePayload parses the raw payload of cmd in place and records the
// structural and style issues that fall out of tokenizing it.
func (p *Parser) parsePayload(cmd *types.Command, cur *scope) {
	index := len(cur.query.Commands)

	if !cmd.Known {
		issue := &types.Issue{
			Severity:     types.Warning,
			Code:         types.CodeUnknownCommand,
			Message:      fmt.Sprintf("unknown command %q", cmd.Name),
			CommandIndex: index,
			Line:         cmd.Line,
			Scope:        cur.name,
		}
		if hint := SuggestCommand(cmd.Name); hint != "" {
			issue.Suggestion = fmt.Sprintf("did you mean %s?", hint)
		}
		p.addIssue(issue)
	}

	if cmd.Unbalanced {
		p.addIssue(&types.Issue{
			Severity:     types.Critical,
			Code:         types.CodeUnbalancedPayload,
			Message:      fmt.Sprintf("%s payload has unbalanced delimiters", cmd.Name),
			CommandIndex: index,
			Line:         cmd.Line,
			Scope:        cur.name,
			Suggestion:   "close every { with } and every [ with ]",
		})
		cmd.ParseErr = fmt.Errorf("unbalanced payload")
		return
	}
	if cmd.Raw == "" {
		return
	}

	val, notes, err := ParsePayload(cmd.Raw)
	if err != nil {
		cmd.ParseErr = err
		return
	}
	cmd.Payload = val

	if notes.TrailingSeparator {
		p.addIssue(&types.Issue{
			Severity:     types.Info,
			Code:         types.CodeTrailingSeparator,
			Message:      fmt.Sprintf("%s payload has a trailing separator", cmd.Name),
			CommandIndex: index,
			Line:         cmd.Line,
			Scope:        cur.name,
		})
	}
	if len(notes.UnquotedKeys) > 0 {
		p.addIssue(&types.Issue{
			Severity:     types.Info,
			Code:         types.CodeUnquotedKey,
			Message:      fmt.Sprintf("%s payload has unquoted keys (valid, but quoting reads better)", cmd.Name),
			CommandIndex: index,
			Line:         cmd.Line,
			Scope:        cur.name,
			Suggestion:   "consider quoting: " + strings.Join(notes.UnquotedKeys, ", "),
		})
	}
}

func (p *Parser) addIssue(issue *types.Issue) {
	p.issues = append(p.issues, issue)
}

// SubqueryID extracts the block name from a SUB payload ({id: name}).
// A missing id yields a positional fallback name so the block can still
// be registered and analyzed.
func SubqueryID(cmd *types.Command) string {
	if id := cmd.Payload.GetText("id"); id != "" {
		return id
	}
	return fmt.Sprintf("sub@line%d", cmd.Line)
}
