// Package service contains the use cases of the matching engine. It
// orchestrates domain objects and the stores defined in internal/store.
//
// Key components:
//
// 1. MatchLifecycle proposes, accepts and declines matches. Every change
// to match status and provider load happens inside one store transaction
// guarded by conditional writes.
//
// 2. CapacityLedger owns provider load. Nothing else writes current_load.
//
// 3. AutoMatcher reacts to profile creation and declines by asking the
// lifecycle for new proposals. Its failures are logged, never returned.
//
// 4. ProfileService and AvailabilityService manage what requesters and
// providers say about themselves.
//
// Notifications leave the service layer as intents handed to an
// IntentEmitter after the transaction commits, so delivery can never
// undo or block a transition.
package service
