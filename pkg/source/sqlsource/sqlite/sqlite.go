// Package sqlite registers the SQLite dialect with the source registry.
//
// Import this package with a blank identifier to register the dialect:
//
//	import _ "github.com/leapstack-labs/leaplist/pkg/source/sqlsource/sqlite"
package sqlite

import (
	"github.com/leapstack-labs/leaplist/pkg/source/sqlsource"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// Dialect is the SQLite dialect. LIKE is case-insensitive for ASCII text.
var Dialect = &sqlsource.Dialect{
	Name:        "sqlite",
	Driver:      "sqlite",
	Placeholder: sqlsource.QuestionPlaceholder,
	Like:        "LIKE",
	TextType:    "TEXT",
}

func init() {
	sqlsource.Register(Dialect)
}
