// Package fields resolves entity attributes for list columns.
//
// Resolution happens once, when a list is configured. Row access afterwards is
// a map lookup (Records) or a precomputed field-index walk (Of).
package fields

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/leapstack-labs/leaplist/pkg/core"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TagName is the struct tag consulted by Of.
const TagName = "list"

// Records returns a Schema for core.Record rows. Every name resolves; rows
// missing the key report ok=false.
func Records() core.Schema {
	return recordSchema{}
}

type recordSchema struct{}

func (recordSchema) Field(name string) (core.FieldAccessor, bool) {
	return func(row core.Entity) (any, bool) {
		switch r := row.(type) {
		case core.Record:
			v, ok := r[name]
			return v, ok
		case map[string]any:
			v, ok := r[name]
			return v, ok
		}
		return nil, false
	}, true
}

// StructSchema resolves the exported fields of one struct type.
type StructSchema struct {
	typ    reflect.Type
	fields map[string]structField
	names  []string
}

type structField struct {
	index []int
	label string
}

// Of builds a StructSchema for T, which must be a struct or pointer to struct.
func Of[T any]() (*StructSchema, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("fields: %s is not a struct", typ)
	}

	s := &StructSchema{
		typ:    typ,
		fields: make(map[string]structField),
	}
	for _, f := range reflect.VisibleFields(typ) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name := SnakeCase(f.Name)
		if tag, ok := f.Tag.Lookup(TagName); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		if _, dup := s.fields[name]; dup {
			return nil, fmt.Errorf("fields: duplicate field name %q in %s", name, typ)
		}
		s.fields[name] = structField{index: f.Index, label: Label(name)}
		s.names = append(s.names, name)
	}
	return s, nil
}

// MustOf is like Of but panics on error. Intended for package-level schemas.
func MustOf[T any]() *StructSchema {
	s, err := Of[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// Field implements core.Schema.
func (s *StructSchema) Field(name string) (core.FieldAccessor, bool) {
	f, ok := s.fields[name]
	if !ok {
		return nil, false
	}
	typ := s.typ
	index := f.index
	return func(row core.Entity) (any, bool) {
		v := reflect.ValueOf(row)
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return nil, false
			}
			v = v.Elem()
		}
		if !v.IsValid() || v.Type() != typ {
			return nil, false
		}
		fv, err := v.FieldByIndexErr(index)
		if err != nil {
			return nil, false
		}
		return fv.Interface(), true
	}, true
}

// Names returns field names in declaration order.
func (s *StructSchema) Names() []string {
	return append([]string(nil), s.names...)
}

// Columns returns one searchable, sortable column per field.
func (s *StructSchema) Columns(width float64) []core.Column {
	cols := make([]core.Column, 0, len(s.names))
	for _, name := range s.names {
		cols = append(cols, core.Column{
			Label:      s.fields[name].label,
			Key:        name,
			Searchable: true,
			Sortable:   true,
			Width:      width,
		})
	}
	return cols
}

// Label derives a display label from an attribute name ("author_time" -> "Author Time").
func Label(name string) string {
	words := strings.Fields(strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(name))
	return cases.Title(language.English).String(strings.Join(words, " "))
}

// SnakeCase converts a Go identifier to snake_case ("AuthorTime" -> "author_time", "ID" -> "id").
func SnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Stringify renders an attribute value for display.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
