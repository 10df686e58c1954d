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

// payload.go implements the relaxed MXQL payload grammar. It looks like
// JSON but is deliberately more tolerant: object keys and scalar values
// may be unquoted bare words, strings may use single or double quotes,
// and trailing separators before a closing delimiter are accepted.
// A strict JSON parser must not be substituted here.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rulego/mxql/types"
)

// PayloadNotes records style findings the payload parser made on the way.
// They are advisory: the payload still parsed.
type PayloadNotes struct {
	// TrailingSeparator is set when a , appeared directly before a
	// closing } or ].
	TrailingSeparator bool
	// UnquotedKeys lists object keys that appeared without quotes.
	UnquotedKeys []string
}

type payloadParser struct {
	src   string
	pos   int
	notes PayloadNotes
}

// ParsePayload parses a raw payload substring into a typed value tree.
// The returned notes are valid even when parsing fails.
func ParsePayload(raw string) (*types.Value, PayloadNotes, error) {
	p := &payloadParser{src: raw}
	val, err := p.parseValue()
	if err != nil {
		return nil, p.notes, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.notes, p.errorf("unexpected %q after payload", p.src[p.pos])
	}
	return val, p.notes, nil
}

func (p *payloadParser) parseValue() (*types.Value, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, p.errorf("unexpected end of payload")
	}
	switch c := p.src[p.pos]; {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '\'' || c == '"':
		s, err := p.readQuoted()
		if err != nil {
			return nil, err
		}
		return &types.Value{Kind: types.KindString, Str: s}, nil
	default:
		return p.parseScalar()
	}
}

func (p *payloadParser) parseObject() (*types.Value, error) {
	p.pos++ // consume {
	obj := types.NewObject()
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.errorf("unterminated object")
		}
		if p.src[p.pos] == '}' {
			p.pos++
			return obj, nil
		}

		key, quoted, err := p.readKey()
		if err != nil {
			return nil, err
		}
		if !quoted {
			p.notes.UnquotedKeys = append(p.notes.UnquotedKeys, key)
		}

		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ':' {
			return nil, p.errorf("expected ':' after key %q", key)
		}
		p.pos++

		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj.Set(key, val)

		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == ',' {
			p.pos++
			p.skipSpace()
			if p.pos < len(p.src) && p.src[p.pos] == '}' {
				p.notes.TrailingSeparator = true
			}
			continue
		}
		if p.pos < len(p.src) && p.src[p.pos] == '}' {
			continue
		}
		return nil, p.errorf("expected ',' or '}' in object")
	}
}

func (p *payloadParser) parseArray() (*types.Value, error) {
	p.pos++ // consume [
	arr := &types.Value{Kind: types.KindArray}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.errorf("unterminated array")
		}
		if p.src[p.pos] == ']' {
			p.pos++
			return arr, nil
		}

		item, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr.Items = append(arr.Items, item)

		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == ',' {
			p.pos++
			p.skipSpace()
			if p.pos < len(p.src) && p.src[p.pos] == ']' {
				p.notes.TrailingSeparator = true
			}
			continue
		}
		if p.pos < len(p.src) && p.src[p.pos] == ']' {
			continue
		}
		return nil, p.errorf("expected ',' or ']' in array")
	}
}

// readKey reads an object key: a quoted string or a bare word.
func (p *payloadParser) readKey() (string, bool, error) {
	c := p.src[p.pos]
	if c == '\'' || c == '"' {
		s, err := p.readQuoted()
		return s, true, err
	}
	word := p.readBareWord()
	if word == "" {
		return "", false, p.errorf("expected object key, found %q", c)
	}
	return word, false, nil
}

// parseScalar reads a number, boolean, null or bare identifier. Anything
// that is not obviously a number or keyword is accepted as a bare-word
// string literal.
func (p *payloadParser) parseScalar() (*types.Value, error) {
	word := p.readBareWord()
	if word == "" {
		return nil, p.errorf("unexpected character %q", p.src[p.pos])
	}
	switch strings.ToLower(word) {
	case "true":
		return &types.Value{Kind: types.KindBool, Bool: true}, nil
	case "false":
		return &types.Value{Kind: types.KindBool, Bool: false}, nil
	case "null":
		return &types.Value{Kind: types.KindNull}, nil
	}
	if num, err := strconv.ParseFloat(word, 64); err == nil {
		return &types.Value{Kind: types.KindNumber, Num: num}, nil
	}
	return &types.Value{Kind: types.KindIdent, Str: word}, nil
}

// readBareWord reads until a structural delimiter. Bare words may carry
// field syntax like dots, dollars, wildcards and call parentheses, e.g.
// avg(cpu), $category, *.
func (p *payloadParser) readBareWord() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == ',' || c == ':' || c == '{' || c == '}' || c == '[' || c == ']' ||
			c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\'' || c == '"' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *payloadParser) readQuoted() (string, error) {
	quote := p.src[p.pos]
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '\\' && p.pos+1 < len(p.src) {
			p.pos++
			b.WriteByte(p.src[p.pos])
			p.pos++
			continue
		}
		if c == quote {
			p.pos++
			return b.String(), nil
		}
		b.WriteByte(c)
		p.pos++
	}
	return "", p.errorf("unterminated string")
}

func (p *payloadParser) skipSpace() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c != ' ' && c != '\t' && c != '\r' && c != '\n' {
			return
		}
		p.pos++
	}
}

func (p *payloadParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("payload offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}
