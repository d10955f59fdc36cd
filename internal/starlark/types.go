// Package starlark evaluates Starlark render expressions for list cells.
package starlark

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/leaplist/pkg/core"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// ColumnInfo is exposed as the "column" global.
type ColumnInfo struct {
	Label string
	Key   string
	Type  string
}

// ToStarlark converts ColumnInfo to a Starlark struct value.
func (c *ColumnInfo) ToStarlark() starlark.Value {
	return starlarkstruct.FromStringDict(starlark.String("column"), starlark.StringDict{
		"label": starlark.String(c.Label),
		"key":   starlark.String(c.Key),
		"type":  starlark.String(c.Type),
	})
}

// ColumnInfoFrom extracts the render-relevant parts of a column.
func ColumnInfoFrom(col *core.Column) *ColumnInfo {
	if col == nil {
		return &ColumnInfo{}
	}
	return &ColumnInfo{Label: col.Label, Key: col.Key, Type: col.Type}
}

// GoToStarlark converts a Go value to a Starlark value.
// Supported types: string, []byte, signed and unsigned integers, float32,
// float64, bool, time.Time, []string, []any, map[string]any, core.Record
func GoToStarlark(v any) (starlark.Value, error) {
	if v == nil {
		return starlark.None, nil
	}

	switch val := v.(type) {
	case string:
		return starlark.String(val), nil

	case []byte:
		return starlark.String(val), nil

	case int:
		return starlark.MakeInt(val), nil

	case int32:
		return starlark.MakeInt64(int64(val)), nil

	case int64:
		return starlark.MakeInt64(val), nil

	case uint:
		return starlark.MakeUint(val), nil

	case uint32:
		return starlark.MakeUint64(uint64(val)), nil

	case uint64:
		return starlark.MakeUint64(val), nil

	case float32:
		return starlark.Float(val), nil

	case float64:
		return starlark.Float(val), nil

	case bool:
		return starlark.Bool(val), nil

	case time.Time:
		return starlark.String(val.Format(time.RFC3339)), nil

	case []string:
		list := make([]starlark.Value, len(val))
		for i, s := range val {
			list[i] = starlark.String(s)
		}
		return starlark.NewList(list), nil

	case []any:
		list := make([]starlark.Value, len(val))
		for i, item := range val {
			sv, err := GoToStarlark(item)
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			list[i] = sv
		}
		return starlark.NewList(list), nil

	case core.Record:
		return GoToStarlark(map[string]any(val))

	case map[string]any:
		dict := starlark.NewDict(len(val))
		for k, v := range val {
			sv, err := GoToStarlark(v)
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", k, err)
			}
			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, fmt.Errorf("dict setkey %q: %w", k, err)
			}
		}
		return dict, nil

	default:
		if s, ok := v.(fmt.Stringer); ok {
			return starlark.String(s.String()), nil
		}
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// ToString renders the result of an expression for display.
// None renders as "", strings without quotes.
func ToString(v starlark.Value) string {
	switch val := v.(type) {
	case nil, starlark.NoneType:
		return ""
	case starlark.String:
		return string(val)
	default:
		return v.String()
	}
}
