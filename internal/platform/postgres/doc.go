// Package postgres provides PostgreSQL implementations of the store
// interfaces: requester and provider profiles, the capacity ledger writes,
// matches, availability slots and notification intents. It also embeds the
// goose migrations that create the schema.
//
// Every state change that other writers may race on is a conditional UPDATE
// whose WHERE clause carries the expected state. Callers read the affected
// row count to learn whether they won.
package postgres
