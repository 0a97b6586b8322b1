// Copyright 2018 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package ycsb

import (
	"sort"
	"strconv"
)

type valueKind uint8

const (
	textKind valueKind = iota
	numericKind
)

// Value is a single field value. It is either numeric (a 64-bit signed
// integer) or text (an opaque byte sequence); the variant is fixed when the
// value is built.
type Value struct {
	kind valueKind
	num  int64
	text []byte
}

// NumericValue creates a numeric Value.
func NumericValue(v int64) Value {
	return Value{kind: numericKind, num: v}
}

// TextValue creates a text Value. The slice is not copied.
func TextValue(b []byte) Value {
	return Value{kind: textKind, text: b}
}

// IsNumeric reports whether v holds an integer.
func (v Value) IsNumeric() bool {
	return v.kind == numericKind
}

// Int64 returns the integer held by v, ok is false for text values.
func (v Value) Int64() (n int64, ok bool) {
	return v.num, v.kind == numericKind
}

// Bytes returns the text held by v. Numeric values are rendered as decimal text.
func (v Value) Bytes() []byte {
	if v.kind == numericKind {
		return strconv.AppendInt(nil, v.num, 10)
	}
	return v.text
}

func (v Value) String() string {
	return string(v.Bytes())
}

// Record maps field names to values.
type Record map[string]Value

// IsNumeric reports whether the record is non-empty and every value in it is numeric.
func (r Record) IsNumeric() bool {
	if len(r) == 0 {
		return false
	}
	for _, v := range r {
		if !v.IsNumeric() {
			return false
		}
	}
	return true
}

// Fields returns the field names of the record in sorted order.
func (r Record) Fields() []string {
	fields := make([]string, 0, len(r))
	for f := range r {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// TextMap returns the record as a field -> bytes map.
func (r Record) TextMap() map[string][]byte {
	m := make(map[string][]byte, len(r))
	for f, v := range r {
		m[f] = v.Bytes()
	}
	return m
}

// NewTextRecord builds a record of text values.
func NewTextRecord(values map[string][]byte) Record {
	r := make(Record, len(values))
	for f, v := range values {
		r[f] = TextValue(v)
	}
	return r
}
