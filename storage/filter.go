package storage

import (
	"time"

	"github.com/poiesic/beanvault/core"
)

// Ordering selects how query results are ranked.
type Ordering int

const (
	// OrderLatest ranks by created descending.
	OrderLatest Ordering = iota

	// OrderTrending ranks by updated descending, ties broken by trend
	// score descending.
	OrderTrending

	// OrderAggregated ranks by the later of created/updated descending,
	// ties broken by trend score descending. This is the combined
	// latest+trending ranking key.
	OrderAggregated

	// OrderSimilarity ranks by embedding distance ascending. Mandatory
	// whenever a similarity constraint is present.
	OrderSimilarity
)

// Similarity constrains a query to beans whose embedding is close to the
// given vector. Either bound may be set; MinScore is a floor on cosine
// similarity, MaxDistance a ceiling on cosine distance.
type Similarity struct {
	Vector      []float32
	MaxDistance float64
	MinScore    float32
}

// FieldMask selects heavy fields to drop from query results. Fields the
// chosen ordering depends on are always kept.
type FieldMask uint8

const (
	OmitContent FieldMask = 1 << iota
	OmitEmbedding
)

// Filter is the backend-neutral query model shared by all read paths: a
// conjunction of predicates plus grouping, ordering, pagination and
// projection. The zero value matches everything, ordered latest-first,
// unpaginated.
type Filter struct {
	// Kind, when non-empty, requires exact kind equality.
	Kind core.Kind

	// Time thresholds; zero values are ignored.
	CreatedSince   time.Time
	UpdatedSince   time.Time
	CollectedSince time.Time

	// Any-match candidate sets; nil/empty sets are ignored. A bean matches
	// when at least one of its values appears in the candidate set.
	Categories []string
	Regions    []string
	Entities   []string

	// Sources, when non-empty, requires set membership of the bean source.
	Sources []string

	// Where is an optional backend-opaque predicate, evaluated last.
	Where func(*core.Bean) bool

	// Similarity, when set, forces OrderSimilarity.
	Similarity *Similarity

	// GroupByCluster collapses ordered results to one representative per
	// cluster, keeping the first row per cluster in sort order.
	GroupByCluster bool

	Ordering Ordering

	// Pagination, enforced after grouping and ordering. Limit 0 means no
	// limit.
	Offset int
	Limit  int

	// Omit drops heavy fields from the returned rows.
	Omit FieldMask
}

// Matches evaluates every predicate except the similarity constraint, which
// the backend applies while scoring.
func (f *Filter) Matches(bean *core.Bean) bool {
	if f.Kind != "" && bean.Kind != f.Kind {
		return false
	}
	if !f.CreatedSince.IsZero() && bean.Created.Before(f.CreatedSince) {
		return false
	}
	if !f.UpdatedSince.IsZero() && bean.Updated.Before(f.UpdatedSince) {
		return false
	}
	if !f.CollectedSince.IsZero() && bean.Collected.Before(f.CollectedSince) {
		return false
	}
	if len(f.Categories) > 0 && !anyMatch(bean.Categories, f.Categories) {
		return false
	}
	if len(f.Regions) > 0 && !anyMatch(bean.Regions, f.Regions) {
		return false
	}
	if len(f.Entities) > 0 && !anyMatch(bean.Entities, f.Entities) {
		return false
	}
	if len(f.Sources) > 0 && !contains(f.Sources, bean.Source) {
		return false
	}
	if f.Where != nil && !f.Where(bean) {
		return false
	}
	return true
}

// EffectiveOrdering resolves the ordering, forcing similarity order when a
// similarity constraint is present.
func (f *Filter) EffectiveOrdering() Ordering {
	if f.Similarity != nil {
		return OrderSimilarity
	}
	return f.Ordering
}

func anyMatch(values, candidates []string) bool {
	for _, v := range values {
		if contains(candidates, v) {
			return true
		}
	}
	return false
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
