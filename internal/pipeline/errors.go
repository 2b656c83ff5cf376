package pipeline

import "fmt"

// DatabaseError is a failure confined to one database. The run records it
// and moves on to the next database.
type DatabaseError struct {
	Database string
	Err      error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database %s: %v", e.Database, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }
