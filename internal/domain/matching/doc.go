// Package matching implements the compatibility score between a requester
// and a provider, and the candidate ranking built on it.
//
// The score is a weighted sum clamped to 100:
//
//   - need/specialty overlap, proportional, 40 points
//   - shared language, 20 points
//   - budget compatibility from an ordered table, up to 20 points
//   - provider-kind preference, 10 points
//   - spare capacity, 10 points
//
// Spare capacity is a hard gate: a provider with current_load >= max_load
// scores 0 whatever the other components say.
//
// All weights live in Params; nothing outside this package hard-codes them.
package matching
