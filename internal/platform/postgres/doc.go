// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces (repositories) defined in the internal/store package.
// It handles the details of query execution, the mapping between domain
// entities and database records, and the translation of PostgreSQL errors
// into store errors. The schema lives in the embedded goose migrations.
package postgres
