// Package domain contains the core business entities of the matching
// engine: requester and provider profiles, matches and their state machine,
// availability slots and notification intents. It is independent of any
// storage or delivery mechanism.
package domain
