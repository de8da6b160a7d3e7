// Package notify delivers notification intents produced by the match
// lifecycle. Intents are persisted first and delivered asynchronously by a
// worker pool, so a slow or unavailable sink never affects a match
// transition. Delivery is at least once: a sink may see an intent again
// after a crash or a sweep.
package notify
