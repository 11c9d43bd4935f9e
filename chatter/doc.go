// Package chatter implements time-windowed social-engagement aggregation.
//
// Raw Chatter snapshots are append-only cumulative counters: successive
// observations of the same social post repeat the running totals. The
// rollup therefore takes the maximum per distinct post, never a sum across
// snapshots, and only then sums across posts. A delta variant runs the same
// rollup twice, once restricted to a trailing reference window, to produce
// trend changes, which collapse into the single trend score used for
// ranking. Materialized aggregates expire on a short TTL and are recomputed
// from raw history.
package chatter
