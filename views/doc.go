// Package views exposes the warehouse's read side: latest, trending and
// aggregated listings, cluster neighborhoods, and text/vector search,
// including find-by-example via a stored embedding. Every view is a thin
// parameterization of the shared backend-neutral filter model.
package views
