// Package testdb provides throwaway datastores for integration tests.
//
// NewPostgres starts a PostgreSQL container (or uses DATABASE_URL when it is
// set), applies the embedded migrations and returns a ready pool. NewRedis
// does the same for Redis. Both are compiled only with the integration build
// tag so unit test runs never need Docker.
package testdb
