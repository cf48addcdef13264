// Package template is a small closed evaluator for descriptor format
// strings like "{group} > {name}". A template compiles once into a list
// of literal and field-reference segments and renders by ordered
// substitution against a raw record.
package template

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type segmentKind int

const (
	literalSegment segmentKind = iota
	fieldSegment
)

type segment struct {
	kind  segmentKind
	value string
}

type Template struct {
	raw      string
	segments []segment
}

// Compile parses a format string. Placeholders are single-level
// "{field.path}" references; braces cannot nest and must balance.
func Compile(raw string) (*Template, error) {
	tmpl := &Template{raw: raw}
	rest := raw
	for len(rest) > 0 {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			tmpl.segments = append(tmpl.segments, segment{kind: literalSegment, value: rest})
			break
		}
		if open > 0 {
			tmpl.segments = append(tmpl.segments, segment{kind: literalSegment, value: rest[:open]})
		}
		rest = rest[open+1:]
		closing := strings.IndexByte(rest, '}')
		if closing < 0 {
			return nil, fmt.Errorf("template %q: unterminated placeholder", raw)
		}
		field := rest[:closing]
		if field == "" || strings.ContainsAny(field, "{}") {
			return nil, fmt.Errorf("template %q: invalid placeholder %q", raw, field)
		}
		tmpl.segments = append(tmpl.segments, segment{kind: fieldSegment, value: field})
		rest = rest[closing+1:]
	}
	return tmpl, nil
}

// MustCompile is for the built-in descriptor table, which is validated by
// tests.
func MustCompile(raw string) *Template {
	tmpl, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return tmpl
}

func (t *Template) String() string {
	return t.raw
}

// Fields lists the field paths the template references, in order.
func (t *Template) Fields() []string {
	var fields []string
	for _, seg := range t.segments {
		if seg.kind == fieldSegment {
			fields = append(fields, seg.value)
		}
	}
	return fields
}

// Render substitutes every placeholder with the record's value at that
// field path. A referenced field that is missing or nil makes the whole
// render fail, returning the offending field: a record that does not
// carry a templated field does not conform to its declared schema.
func (t *Template) Render(record map[string]any) (string, string, error) {
	var out strings.Builder
	for _, seg := range t.segments {
		if seg.kind == literalSegment {
			out.WriteString(seg.value)
			continue
		}
		value, ok := Lookup(record, seg.value)
		if !ok || value == nil {
			return "", seg.value, fmt.Errorf("template %q: missing field %q", t.raw, seg.value)
		}
		out.WriteString(fmt.Sprintf("%v", value))
	}
	return out.String(), "", nil
}

// Lookup resolves a dotted field path against nested documents. Each
// path element descends one map level.
func Lookup(record map[string]any, path string) (any, bool) {
	current := any(record)
	for {
		key, rest, nested := strings.Cut(path, ".")
		doc, ok := asDocument(current)
		if !ok {
			return nil, false
		}
		value, ok := doc[key]
		if !ok {
			return nil, false
		}
		if !nested {
			return value, true
		}
		current = value
		path = rest
	}
}

func asDocument(value any) (map[string]any, bool) {
	switch doc := value.(type) {
	case map[string]any:
		return doc, true
	case primitive.M:
		// nested documents decode as primitive.M
		return doc, true
	default:
		return nil, false
	}
}
