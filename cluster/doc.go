// Package cluster implements bounded-batch approximate similarity
// clustering.
//
// Instead of an all-pairs O(n^2) comparison over all history, the engine
// repeatedly selects a small batch of beans whose comparison has not run,
// crosses it against a recency-scoped pool and records a symmetric edge for
// every pair within an epsilon cosine distance. The loop converges when no
// bean in scope lacks an edge computation. A separate assignment stage then
// gives each edged bean a cluster representative: the neighbor with the
// largest recorded group. Representative selection is a greedy local
// heuristic, not transitive closure; two beans connected only through a
// chain of intermediates may end up with different representatives.
package cluster
