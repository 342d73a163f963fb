// Package sql provides a database/sql backed driver for dbal.
//
// The package renders backend configurations into DSNs and opens one
// dedicated connection per backend session, so the transaction-control
// statements issued by the router always land on the same physical
// connection.
//
// # DSN rendering
//
// The default renderer understands two shapes:
//
//   - driver "mysql" (the default): host, port, credentials, database,
//     charset and params are rendered with go-sql-driver/mysql's DSN format
//   - any driver with Params["dsn"] set: the raw DSN is passed through
//     verbatim (useful for sqlite3 file paths and test drivers)
//
// Other database/sql drivers can be supported with WithDSNFunc.
//
// # Usage
//
//	import (
//	    "github.com/bratiask/dbal"
//	    sqladapter "github.com/bratiask/dbal/adapter/sql"
//	    _ "github.com/go-sql-driver/mysql"
//	)
//
//	conn, err := dbal.New(sqladapter.New(), cfg)
//
// # Transactions
//
// Begin/Commit/Rollback and savepoint operations are issued as explicit
// statements (BEGIN, SAVEPOINT name, ...) on the dedicated connection,
// keeping nesting bookkeeping in the router rather than in database/sql.
package sql
