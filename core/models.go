package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for warehouse entities.
// Beans are keyed by their URL, publishers by their source domain.
type ID uint64

// IDFromContent generates a deterministic ID from text using BLAKE2b hashing.
// Identical content always produces the same ID, which is what makes
// dedup-before-insert idempotent across concurrent writers.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Kind identifies the type of content a Bean carries.
type Kind string

const (
	KindNews    Kind = "news"
	KindPost    Kind = "post"
	KindComment Kind = "comment"
)

// ValidKind reports whether k is one of the known content kinds.
func ValidKind(k Kind) bool {
	return k == KindNews || k == KindPost || k == KindComment
}

// Bean is a content item with a unique, immutable URL identity.
//
// Core fields are set once at ingestion and never overwritten by a later
// ingestion of the same URL. Enrichment fields (Embedding, Gist, Entities,
// Regions) and derived fields (Categories, Sentiments, ClusterID,
// ClusterSize, Related, TrendScore) are filled and overwritten in place by
// maintenance passes.
type Bean struct {
	URL       string
	Kind      Kind
	Source    string
	Title     string
	Summary   string
	Content   string
	Author    string
	ImageURL  string
	Created   time.Time // When the content was originally published
	Collected time.Time // When the collector picked it up
	Updated   time.Time // Last warehouse write, drives the trending order

	TitleWords   int
	SummaryWords int
	ContentWords int
	Restricted   bool

	Embedding []float32
	Gist      string
	Entities  []string
	Regions   []string

	Categories  []string
	Sentiments  []string
	ClusterID   ID
	ClusterSize int
	Related     []string
	TrendScore  int64

	// SearchScore is set per query and never persisted.
	SearchScore float32
}

// ID returns the Bean's identity derived from its URL.
func (b *Bean) ID() ID {
	return IDFromContent(b.URL)
}

// DeriveCounts fills the word-count fields from the text fields.
// Called once at store time.
func (b *Bean) DeriveCounts() {
	b.TitleWords = len(strings.Fields(b.Title))
	b.SummaryWords = len(strings.Fields(b.Summary))
	b.ContentWords = len(strings.Fields(b.Content))
}

// Publisher describes a content source, keyed by its domain.
// One row per source; updates are an explicit merge of non-empty fields.
type Publisher struct {
	Source  string
	BaseURL string
	Title   string
	Summary string
	Favicon string
	RSSFeed string
	Updated time.Time
}

// ID returns the Publisher's identity derived from its source domain.
func (p *Publisher) ID() ID {
	return IDFromContent(p.Source)
}

// Chatter is a raw, timestamped social-engagement snapshot for a Bean from
// one social post. Snapshots are append-only: successive observations of the
// same post are cumulative counters, aggregated at read time, never mutated.
type Chatter struct {
	URL         string // The Bean this engagement refers to
	ChatterURL  string // The social post carrying the engagement
	Source      string
	Forum       string
	Collected   time.Time
	Likes       int
	Comments    int
	Subscribers int
}

// ChatterAggregate is the per-URL rollup of raw Chatter snapshots: the
// latest counts per distinct post, summed across posts. The Change fields
// are arithmetic differences against the same rollup computed over a
// trailing reference window.
type ChatterAggregate struct {
	URL         string
	Likes       int
	Comments    int
	Subscribers int
	Shares      int // Count of distinct posts
	SharedIn    []string

	LikesChange    int
	CommentsChange int
	SharesChange   int

	Refreshed time.Time
}

// ClusterEdge records that two Beans' embeddings are within the cluster
// epsilon of each other. Every processed Bean carries at least its
// self-edge, which is how the clustering loop tells processed from pending.
type ClusterEdge struct {
	BeanID     ID
	NeighborID ID
	Distance   float64
}

// RefSet names one of the two fixed reference-vector catalogs.
type RefSet string

const (
	RefSetCategories RefSet = "categories"
	RefSetSentiments RefSet = "sentiments"
)

// RefVector is a labeled anchor embedding from a fixed catalog, used for
// nearest-neighbor classification. Catalogs are seeded once and never
// mutated by the engine.
type RefVector struct {
	Label     string
	Embedding []float32
}
