package storage

import "github.com/poiesic/beanvault/core"

// BeanPatch is a compile-time set of updatable Bean fields. Each patch type
// names exactly the fields one maintenance pass may overwrite, so a partial
// merge can never touch a column by a misspelled name. Within a patch, a nil
// slice or pointer means "leave as stored" and a non-nil empty value means
// "clear".
type BeanPatch interface {
	Apply(bean *core.Bean)
}

// EnrichmentPatch carries the fields filled by the enrichment pass.
type EnrichmentPatch struct {
	Embedding []float32
	Gist      *string
	Entities  []string
	Regions   []string
}

var _ BeanPatch = EnrichmentPatch{}

func (p EnrichmentPatch) Apply(bean *core.Bean) {
	if p.Embedding != nil {
		bean.Embedding = p.Embedding
	}
	if p.Gist != nil {
		bean.Gist = *p.Gist
	}
	if p.Entities != nil {
		bean.Entities = p.Entities
	}
	if p.Regions != nil {
		bean.Regions = p.Regions
	}
}

// ClassificationPatch carries the labels assigned by the classification
// engine.
type ClassificationPatch struct {
	Categories []string
	Sentiments []string
}

var _ BeanPatch = ClassificationPatch{}

func (p ClassificationPatch) Apply(bean *core.Bean) {
	if p.Categories != nil {
		bean.Categories = p.Categories
	}
	if p.Sentiments != nil {
		bean.Sentiments = p.Sentiments
	}
}

// ClusterPatch carries the representative assignment computed by the
// clustering engine.
type ClusterPatch struct {
	ClusterID   core.ID
	ClusterSize int
	Related     []string
}

var _ BeanPatch = ClusterPatch{}

func (p ClusterPatch) Apply(bean *core.Bean) {
	bean.ClusterID = p.ClusterID
	bean.ClusterSize = p.ClusterSize
	if p.Related != nil {
		bean.Related = p.Related
	}
}

// TrendPatch carries the ranking signal computed by the chatter aggregation
// engine. Updated is bumped by the repository on every patch, which is what
// moves a bean up the trending order.
type TrendPatch struct {
	TrendScore int64
}

var _ BeanPatch = TrendPatch{}

func (p TrendPatch) Apply(bean *core.Bean) {
	bean.TrendScore = p.TrendScore
}
