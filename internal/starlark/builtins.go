package starlark

import (
	"fmt"
	"regexp"
	"strings"

	"go.starlark.net/starlark"
)

// styleCode matches ManiaPlanet text formatting: colors ($fff, $f0), single
// letter codes ($o, $z, $s ...) and link openers with targets ($l[url]).
var styleCode = regexp.MustCompile(`\$([0-9a-fA-F]{1,3}|[lhpLHP]\[[^\]]*\]|[^$])`)

// StripStyles removes formatting codes from a nickname or map name.
// "$$" is an escaped dollar sign and is kept as "$".
func StripStyles(s string) string {
	parts := strings.Split(s, "$$")
	for i, p := range parts {
		parts[i] = styleCode.ReplaceAllString(p, "")
		parts[i] = strings.TrimSuffix(parts[i], "$")
	}
	return strings.Join(parts, "$")
}

// FormatTime renders a race time in milliseconds as [h:]m:ss.mmm.
func FormatTime(ms int64) string {
	sign := ""
	if ms < 0 {
		sign, ms = "-", -ms
	}
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	frac := ms % 1000
	if h > 0 {
		return fmt.Sprintf("%s%d:%02d:%02d.%03d", sign, h, m, s, frac)
	}
	return fmt.Sprintf("%s%d:%02d.%03d", sign, m, s, frac)
}

func builtinStripStyles(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &s); err != nil {
		return nil, err
	}
	return starlark.String(StripStyles(s)), nil
}

func builtinFormatTime(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var ms int
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &ms); err != nil {
		return nil, err
	}
	return starlark.String(FormatTime(int64(ms))), nil
}

// Builtins returns the helper functions available to every expression.
func Builtins() starlark.StringDict {
	return starlark.StringDict{
		"strip_styles": starlark.NewBuiltin("strip_styles", builtinStripStyles),
		"format_time":  starlark.NewBuiltin("format_time", builtinFormatTime),
	}
}

// Predeclared returns the globals of one cell evaluation: the builtins plus
// row, value and column.
func Predeclared(row, value starlark.Value, column *ColumnInfo) starlark.StringDict {
	globals := Builtins()
	globals["row"] = row
	globals["value"] = value
	if column != nil {
		globals["column"] = column.ToStarlark()
	}
	return globals
}
