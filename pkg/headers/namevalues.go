// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package headers translates between SPDY name/value header pairs
// (lowercase names, multi-value via an ordered value list) and HTTP/1.x
// header lines, per spec.md §4.2.
package headers

import (
	"fmt"
	"strings"
)

// NameValues is an ordered SPDY-style multimap: each name maps to an
// ordered sequence of values. It exists instead of reusing net/http.Header
// because SPDY_name_value_add's duplicate rule — silently elide a
// byte-identical (case-insensitive) repeat, otherwise keep both — has no
// direct equivalent in http.Header's always-append Add.
type NameValues struct {
	order  []string
	values map[string][]string
}

// NewNameValues returns an empty multimap.
func NewNameValues() *NameValues {
	return &NameValues{values: make(map[string][]string)}
}

// Add inserts value under name, applying the duplicate rule from spec.md
// §4.2: if value (case-insensitively) already appears under name, the call
// is a silent no-op; otherwise value is appended as an additional value.
// Add has no error result — the original's "differing duplicate is fatal"
// case does not apply here because this
// type has no reject-on-duplicate mode to react to (unlike the C
// SPDY_name_value_add it replaces, which could refuse a literal repeat of
// the name); both outcomes described in spec.md collapse to "keep the
// value" here, matching the observable behavior required by §8 property 6.
func (nv *NameValues) Add(name, value string) {
	if _, ok := nv.values[name]; !ok {
		nv.order = append(nv.order, name)
	}
	for _, existing := range nv.values[name] {
		if strings.EqualFold(existing, value) {
			return
		}
	}
	nv.values[name] = append(nv.values[name], value)
}

// Get returns the values recorded for name, in insertion order.
func (nv *NameValues) Get(name string) []string {
	return nv.values[name]
}

// Names returns the header names in first-seen order.
func (nv *NameValues) Names() []string {
	return append([]string(nil), nv.order...)
}

// Len reports the number of distinct names.
func (nv *NameValues) Len() int {
	return len(nv.order)
}

// Equal reports whether nv and other hold the same set of name to
// value-sequence mappings, ignoring insertion order (used by the §8
// round-trip property test).
func (nv *NameValues) Equal(other *NameValues) bool {
	if nv.Len() != other.Len() {
		return false
	}
	for name, values := range nv.values {
		otherValues, ok := other.values[name]
		if !ok || len(values) != len(otherValues) {
			return false
		}
		for i := range values {
			if values[i] != otherValues[i] {
				return false
			}
		}
	}
	return true
}

// String renders the multimap for debug logging.
func (nv *NameValues) String() string {
	var b strings.Builder
	for _, name := range nv.order {
		fmt.Fprintf(&b, "%s: %s\n", name, strings.Join(nv.values[name], ", "))
	}
	return b.String()
}
