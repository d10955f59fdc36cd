// Package duckdb registers the DuckDB dialect with the source registry.
//
// Import this package with a blank identifier to register the dialect:
//
//	import _ "github.com/leapstack-labs/leaplist/pkg/source/sqlsource/duckdb"
package duckdb

import (
	"github.com/leapstack-labs/leaplist/pkg/source/sqlsource"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Dialect is the DuckDB dialect.
var Dialect = &sqlsource.Dialect{
	Name:        "duckdb",
	Driver:      "duckdb",
	Placeholder: sqlsource.QuestionPlaceholder,
	Like:        "ILIKE",
	TextType:    "VARCHAR",
}

func init() {
	sqlsource.Register(Dialect)
}
