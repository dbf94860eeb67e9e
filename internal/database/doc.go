// Package database provides the PostgreSQL connection pool used by the
// postgres manifest backend.
package database
