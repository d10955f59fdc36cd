// Package postgres registers the PostgreSQL dialect with the source registry.
//
// Import this package with a blank identifier to register the dialect:
//
//	import _ "github.com/leapstack-labs/leaplist/pkg/source/sqlsource/postgres"
package postgres

import (
	"github.com/leapstack-labs/leaplist/pkg/source/sqlsource"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
)

// Dialect is the PostgreSQL dialect.
var Dialect = &sqlsource.Dialect{
	Name:        "postgres",
	Driver:      "pgx",
	Placeholder: sqlsource.DollarPlaceholder,
	Like:        "ILIKE",
	TextType:    "TEXT",
}

func init() {
	sqlsource.Register(Dialect)
}
