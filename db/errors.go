package db

import (
	"strings"

	"github.com/teranos/mechrelay/errors"
)

// ErrDatabaseClosed is returned when history is written after shutdown closed the database
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed reports whether err means the connection is already closed.
// database/sql returns its own unexported error for this, so the message is
// matched as a fallback.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}
