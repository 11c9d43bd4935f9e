// Package maintain provides the maintenance and resilience layer of the
// warehouse: a bounded retry combinator for transient transaction
// conflicts, a worker-pool refresher for running independent derived-state
// passes concurrently, a retention sweeper, and progress reporting for
// long catch-up jobs.
//
// Classification, clustering and chatter aggregation write disjoint derived
// state, so the Refresher may run them in parallel; clustering single-flights
// itself internally.
package maintain
