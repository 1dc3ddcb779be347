/*
This package contains lowish-level APIs for making database queries to our
Postgres database. It streamlines the process of mapping query results to Go
types, while allowing you to write arbitrary SQL queries.

The primary functions are Query and QueryIterator.

# Query syntax

Arguments can be provided using placeholders like $1, $2, etc. All arguments
will be safely escaped and mapped from their Go type to the correct Postgres
type. (This is a direct proxy to pgx.)

	ids, err := db.Query[string](ctx, conn,
		`
		SELECT id
		FROM link
		WHERE owner_id = $1
		`,
		ownerID,
	)

When querying individual fields, simply select the field. To query multiple
columns at once, use a struct type with `db:"column_name"` tags and the
special $columns placeholder:

	type Link struct {
		ID      string `db:"id"`
		OwnerID string `db:"owner_id"`
	}
	links, err := db.Query[Link](ctx, conn, `SELECT $columns FROM link`)
	// Resulting query:
	// SELECT id, owner_id FROM link

If a table name is required to disambiguate columns, use $columns{tablename}
and the prefix will be applied to every column.
*/
package db
