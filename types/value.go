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

import (
	"strconv"
	"strings"
)

// ValueKind discriminates the variants of a payload Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindObject
	KindArray
	KindString
	KindNumber
	KindBool
	// KindIdent is an unquoted bare word, treated as a string literal.
	KindIdent
)

// String returns the name of the value kind.
func (k ValueKind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindIdent:
		return "ident"
	case KindNull:
		return "null"
	default:
		return "unknown"
	}
}

// Value is the tagged variant for a parsed command payload. Objects keep
// their keys in document order so re-emitting a query is stable.
type Value struct {
	Kind ValueKind

	Str   string // KindString and KindIdent
	Num   float64
	Bool  bool
	Items []*Value // KindArray

	// KindObject: Keys preserves insertion order, Entries indexes by key.
	Keys    []string
	Entries map[string]*Value
}

// NewObject returns an empty object value.
func NewObject() *Value {
	return &Value{Kind: KindObject, Entries: map[string]*Value{}}
}

// Set appends a key/value pair. A duplicate key overwrites the previous
// value but keeps the original key position.
func (v *Value) Set(key string, val *Value) {
	if _, exists := v.Entries[key]; !exists {
		v.Keys = append(v.Keys, key)
	}
	v.Entries[key] = val
}

// Get looks up a key in an object value. It reports false for any
// non-object value, so callers can probe payloads without kind checks.
func (v *Value) Get(key string) (*Value, bool) {
	if v == nil || v.Kind != KindObject {
		return nil, false
	}
	val, ok := v.Entries[key]
	return val, ok
}

// GetText returns the textual form of the value stored under key, or ""
// when the key is absent.
func (v *Value) GetText(key string) string {
	val, ok := v.Get(key)
	if !ok {
		return ""
	}
	return val.Text()
}

// Text returns the value as a plain string regardless of how it was
// quoted in the source. Objects and arrays re-emit in source form.
func (v *Value) Text() string {
	if v == nil {
		return ""
	}
	switch v.Kind {
	case KindString, KindIdent:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNull:
		return "null"
	default:
		return v.Emit()
	}
}

// IsScalar reports whether the value is a single literal rather than a
// composite.
func (v *Value) IsScalar() bool {
	if v == nil {
		return false
	}
	return v.Kind != KindObject && v.Kind != KindArray
}

// Emit renders the value back to MXQL payload syntax. String values are
// single-quoted, idents stay bare; object keys stay unquoted.
func (v *Value) Emit() string {
	if v == nil {
		return ""
	}
	var b strings.Builder
	v.emit(&b)
	return b.String()
}

func (v *Value) emit(b *strings.Builder) {
	switch v.Kind {
	case KindObject:
		b.WriteByte('{')
		for i, key := range v.Keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(key)
			b.WriteByte(':')
			v.Entries[key].emit(b)
		}
		b.WriteByte('}')
	case KindArray:
		b.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				b.WriteByte(',')
			}
			item.emit(b)
		}
		b.WriteByte(']')
	case KindString:
		b.WriteByte('\'')
		b.WriteString(strings.ReplaceAll(v.Str, "'", "\\'"))
		b.WriteByte('\'')
	case KindIdent:
		b.WriteString(v.Str)
	case KindNumber:
		b.WriteString(strconv.FormatFloat(v.Num, 'f', -1, 64))
	case KindBool:
		b.WriteString(strconv.FormatBool(v.Bool))
	case KindNull:
		b.WriteString("null")
	}
}
