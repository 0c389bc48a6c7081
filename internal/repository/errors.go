// Package repository implements MySQL persistence for users, seats,
// refresh tokens and reservations. The reservation store satisfies the
// scheduler.Store interface and translates driver-level failures into
// the scheduler's sentinel errors, so handlers never see raw MySQL
// error codes.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrEmailExists is returned when registration hits the unique email
// index. Handlers translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// MySQL server error numbers the repositories care about.
const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
)

func isMySQLError(err error, number uint16) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == number
}

// isDuplicateKey reports whether err is a unique-constraint violation.
func isDuplicateKey(err error) bool { return isMySQLError(err, mysqlDuplicateEntry) }

// isForeignKeyInUse reports whether err means the row is still
// referenced by dependent records.
func isForeignKeyInUse(err error) bool { return isMySQLError(err, mysqlRowIsReferenced) }
