// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow the service layer to
// distinguish missing rows from unique-key violations without looking at
// driver error codes.
package repository

import (
    "errors"

    "github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique
// key, such as a second user with the same email or a second room with
// the same number.
var ErrDuplicate = errors.New("duplicate entry")

// isDuplicate reports whether err is MySQL error 1062 (ER_DUP_ENTRY).
func isDuplicate(err error) bool {
    var me *mysql.MySQLError
    return errors.As(err, &me) && me.Number == 1062
}
