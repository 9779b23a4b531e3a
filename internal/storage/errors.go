package storage

import "fmt"

// ConnectionError means the pool could not hand out a validated
// connection after exhausting its retry budget.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return fmt.Sprintf("database connection failed: %v", e.Err) }
func (e *ConnectionError) Unwrap() error { return e.Err }

// SchemaError means the idempotent DDL transaction failed.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string { return fmt.Sprintf("schema creation failed: %v", e.Err) }
func (e *SchemaError) Unwrap() error { return e.Err }

// InsertError means a row write failed, either because the observation
// was malformed or because the storage engine rejected the transaction.
type InsertError struct {
	Err error
}

func (e *InsertError) Error() string { return fmt.Sprintf("record insert failed: %v", e.Err) }
func (e *InsertError) Unwrap() error { return e.Err }
