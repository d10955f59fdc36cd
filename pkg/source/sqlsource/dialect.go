// Package sqlsource implements core.Query on top of database/sql.
//
// Queries compile to a single SELECT (or SELECT COUNT(*)) statement using the
// placeholder, LIKE operator and text-cast conventions of a registered Dialect.
// Dialects register themselves from driver subpackages:
//
//	import _ "github.com/leapstack-labs/leaplist/pkg/source/sqlsource/sqlite"
package sqlsource

import (
	"fmt"
	"strings"
)

// Dialect describes how to talk to one SQL engine.
type Dialect struct {
	// Name is the registry key ("sqlite", "postgres", "duckdb").
	Name string
	// Driver is the database/sql driver name.
	Driver string
	// Placeholder formats the n-th (1-based) bind parameter.
	Placeholder func(n int) string
	// Like is the case-insensitive pattern operator.
	Like string
	// TextType is the type name used to cast columns before matching.
	TextType string
}

// QuestionPlaceholder formats "?" placeholders.
func QuestionPlaceholder(int) string { return "?" }

// DollarPlaceholder formats "$n" placeholders.
func DollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

// QuoteIdent quotes a possibly schema-qualified identifier.
func (d *Dialect) QuoteIdent(ident string) string {
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

func (d *Dialect) placeholder(n int) string {
	if d.Placeholder == nil {
		return "?"
	}
	return d.Placeholder(n)
}

func (d *Dialect) like() string {
	if d.Like == "" {
		return "LIKE"
	}
	return d.Like
}

func (d *Dialect) textType() string {
	if d.TextType == "" {
		return "TEXT"
	}
	return d.TextType
}

// escapeLike escapes LIKE wildcards so text matches literally.
func escapeLike(text string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(text)
}
