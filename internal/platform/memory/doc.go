// Package memory provides an in-process implementation of store.Backend.
//
// All data lives in one dataset guarded by a single mutex. A transaction
// holds the mutex for its whole duration and works on a copy of the
// dataset that replaces the live one on commit, so units of work are
// serializable and a failed one leaves no trace. It backs the memory
// database driver and the service tests.
package memory
