// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the matching engine, allowing business rules to remain independent of
// specific database technologies or persistence details.
//
// Every write that protects an invariant is expressed as a conditional
// write reporting whether it affected a row, so that concurrent callers in
// different processes cannot both succeed past a guard.
package store
