// Package dispatcher implements the scheduled-post dispatch pipeline:
// each tick selects due pending posts, publishes them through the
// platform registry, records the outcome, and notifies the author.
//
// Failure policy per item:
//   - no publisher registered: configuration gap, the post stays
//     pending and is retried on a later tick once a publisher appears
//   - publish failed: the post transitions to failed, terminally
//   - owner notification failed: logged, never affects post state
//
// A store read failure aborts the whole tick before any side effects.
package dispatcher
