// Package db carries the SQL schema compiled into the binary, so a fresh
// database can be migrated without shipping files next to the executable.
package db

import _ "embed"

// Schema holds the full DDL for the application: accounts, dishes, carts,
// favorites, and the order tables.
//
//go:embed migrations/001_schema.sql
var Schema string
