// Package changes computes field-level diffs for partial updates.
package changes

import (
	"fmt"
	"strings"
)

type Change struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// Field binds a named text column of T to its accessors.
type Field[T any] struct {
	Name string
	Get  func(*T) string
	Set  func(*T, string)
}

// LooselyEqual treats values as equal when they only differ by surrounding
// whitespace, so "", "  " and an absent value never count as a change.
func LooselyEqual(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

// Apply writes every supplied value into target and returns the fields whose
// value changed under LooselyEqual. Nil values leave the field untouched.
// Loosely equal values keep the stored text.
func Apply[T any](target *T, fields []Field[T], values map[string]*string) []Change {
	var out []Change
	for _, f := range fields {
		v, ok := values[f.Name]
		if !ok || v == nil {
			continue
		}
		old := f.Get(target)
		if LooselyEqual(old, *v) {
			continue
		}
		out = append(out, Change{Field: f.Name, Old: old, New: *v})
		f.Set(target, *v)
	}
	return out
}

// Assign sets every field present in record, without diffing.
func Assign[T any](target *T, fields []Field[T], record map[string]string) {
	for _, f := range fields {
		if v, ok := record[f.Name]; ok {
			f.Set(target, v)
		}
	}
}

// Summary renders changes as "field: 'old' -> 'new'" pairs.
func Summary(changes []Change) string {
	if len(changes) == 0 {
		return "no changes"
	}
	parts := make([]string, len(changes))
	for i, c := range changes {
		parts[i] = fmt.Sprintf("%s: '%s' -> '%s'", c.Field, c.Old, c.New)
	}
	return strings.Join(parts, ", ")
}
