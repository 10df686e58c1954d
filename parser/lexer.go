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

package parser

import "strings"

// rawCommand is one tokenized command: a keyword plus the raw payload
// substring that belongs to it. Payload parsing happens later.
type rawCommand struct {
	name    string
	line    int
	column  int
	payload string
	// unbalanced is set when the payload's delimiters never closed and
	// capture stopped at the next command boundary or end of input.
	unbalanced bool
}

// Lexer splits MXQL text into command tokens. It tracks line and column
// for diagnostics and never fails: malformed payloads are captured
// best-effort so the rest of the input still tokenizes.
type Lexer struct {
	input string
	pos   int
	line  int
	col   int
}

// NewLexer creates a lexer over the given query text.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1, col: 1}
}

// Next returns the next command token, or nil at end of input.
func (l *Lexer) Next() *rawCommand {
	l.skipIgnorable()
	if l.pos >= len(l.input) {
		return nil
	}

	cmd := &rawCommand{line: l.line, column: l.col}

	if !isWordStart(l.ch()) {
		// Stray punctuation cannot start a command. Skip the line so a
		// single bad character does not swallow the whole input.
		cmd.name = l.readToLineEnd()
		return cmd
	}

	cmd.name = l.readWord()
	l.skipInlineSpace()

	switch {
	case l.pos >= len(l.input):
		// no payload
	case l.ch() == '{' || l.ch() == '[':
		cmd.payload, cmd.unbalanced = l.readDelimited()
	case l.ch() == '\n':
		// no payload
	default:
		cmd.payload = strings.TrimSpace(stripLineComment(l.readToLineEnd()))
	}
	return cmd
}

// stripLineComment cuts a trailing #, // or -- comment off a scalar
// payload line. Marker characters inside quoted strings are payload, not
// comments.
func stripLineComment(s string) string {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '#':
			return s[:i]
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			return s[:i]
		case c == '-' && i+1 < len(s) && s[i+1] == '-':
			return s[:i]
		}
	}
	return s
}

func (l *Lexer) ch() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peek() byte {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}
	if l.input[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

// skipIgnorable consumes whitespace and comments between commands.
// Line comments start with #, // or --; block comments use /* */.
func (l *Lexer) skipIgnorable() {
	for l.pos < len(l.input) {
		c := l.ch()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '#',
			c == '/' && l.peek() == '/',
			c == '-' && l.peek() == '-':
			l.readToLineEnd()
		case c == '/' && l.peek() == '*':
			l.advance()
			l.advance()
			for l.pos < len(l.input) && !(l.ch() == '*' && l.peek() == '/') {
				l.advance()
			}
			l.advance()
			l.advance()
		default:
			return
		}
	}
}

func (l *Lexer) skipInlineSpace() {
	for l.ch() == ' ' || l.ch() == '\t' {
		l.advance()
	}
}

func (l *Lexer) readWord() string {
	start := l.pos
	for l.pos < len(l.input) && isWordChar(l.ch()) {
		l.advance()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readToLineEnd() string {
	start := l.pos
	for l.pos < len(l.input) && l.ch() != '\n' {
		l.advance()
	}
	return l.input[start:l.pos]
}

// readDelimited captures a {...} or [...] payload to its matching closer,
// tracking nesting depth and quoted strings so nested brackets inside the
// payload are captured whole. A balanced payload is always captured whole,
// no matter what its continuation lines look like. Only when the scan
// reaches end of input with delimiters still open does the lexer rewind to
// the first line that started with a known command keyword, so the rest of
// the query still tokenizes; the token is then marked unbalanced.
func (l *Lexer) readDelimited() (string, bool) {
	start := l.pos
	var stack []byte
	var quote byte
	escaped := false
	atLineStart := false
	rewindPos := -1
	rewindLine, rewindCol := 0, 0

	for l.pos < len(l.input) {
		c := l.ch()

		if atLineStart && quote == 0 && rewindPos < 0 {
			// Candidate recovery point, used only if the payload never
			// balances. A command keyword can legally appear at the start
			// of a payload line (oid is also a field name), so capture
			// must not stop here eagerly.
			if word := l.peekWord(); word != "" {
				if _, known := LookupCommand(word); known {
					rewindPos, rewindLine, rewindCol = l.pos, l.line, l.col
				}
			}
		}

		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '{' || c == '[':
			stack = append(stack, c)
		case c == '}' || c == ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				l.advance()
				return l.input[start:l.pos], false
			}
		}

		atLineStart = c == '\n'
		l.advance()
	}

	if rewindPos >= 0 {
		l.pos, l.line, l.col = rewindPos, rewindLine, rewindCol
		return strings.TrimSpace(l.input[start:rewindPos]), true
	}
	return strings.TrimSpace(l.input[start:l.pos]), true
}

// peekWord reads the word at the current position without consuming it,
// skipping leading inline space.
func (l *Lexer) peekWord() string {
	i := l.pos
	for i < len(l.input) && (l.input[i] == ' ' || l.input[i] == '\t') {
		i++
	}
	start := i
	for i < len(l.input) && isWordChar(l.input[i]) {
		i++
	}
	return l.input[start:i]
}

func isWordStart(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isWordChar(ch byte) bool {
	return isWordStart(ch) || '0' <= ch && ch <= '9' || ch == '-'
}
