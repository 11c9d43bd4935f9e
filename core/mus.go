package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the warehouse record types. Field order
// is part of the storage format and must not change between releases.
//
// SearchScore is query-only and deliberately not serialized.

var (
	IDMUS               = idSer{}
	BeanMUS             = beanSer{}
	PublisherMUS        = publisherSer{}
	ChatterMUS          = chatterSer{}
	ChatterAggregateMUS = aggregateSer{}
	RefVectorMUS        = refVectorSer{}

	float32SliceMUS = ord.NewSliceSer[float32](raw.Float32)
	stringSliceMUS  = ord.NewSliceSer[string](ord.String)
)

type idSer struct{}

func (idSer) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idSer) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (idSer) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

type beanSer struct{}

func (beanSer) Marshal(v Bean, bs []byte) (n int) {
	n = ord.String.Marshal(v.URL, bs)
	n += ord.String.Marshal(string(v.Kind), bs[n:])
	n += ord.String.Marshal(v.Source, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Summary, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += ord.String.Marshal(v.Author, bs[n:])
	n += ord.String.Marshal(v.ImageURL, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.Created, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.Collected, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.Updated, bs[n:])
	n += varint.Int.Marshal(v.TitleWords, bs[n:])
	n += varint.Int.Marshal(v.SummaryWords, bs[n:])
	n += varint.Int.Marshal(v.ContentWords, bs[n:])
	n += ord.Bool.Marshal(v.Restricted, bs[n:])
	n += float32SliceMUS.Marshal(v.Embedding, bs[n:])
	n += ord.String.Marshal(v.Gist, bs[n:])
	n += stringSliceMUS.Marshal(v.Entities, bs[n:])
	n += stringSliceMUS.Marshal(v.Regions, bs[n:])
	n += stringSliceMUS.Marshal(v.Categories, bs[n:])
	n += stringSliceMUS.Marshal(v.Sentiments, bs[n:])
	n += IDMUS.Marshal(v.ClusterID, bs[n:])
	n += varint.Int.Marshal(v.ClusterSize, bs[n:])
	n += stringSliceMUS.Marshal(v.Related, bs[n:])
	n += varint.Int64.Marshal(v.TrendScore, bs[n:])
	return
}

func (beanSer) Unmarshal(bs []byte) (v Bean, n int, err error) {
	var (
		n1   int
		kind string
	)
	if v.URL, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if kind, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	v.Kind = Kind(kind)
	n += n1
	if v.Source, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Summary, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Author, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.ImageURL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Created, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Collected, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Updated, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.TitleWords, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.SummaryWords, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.ContentWords, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Restricted, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Embedding, n1, err = float32SliceMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Gist, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Entities, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Regions, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Categories, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Sentiments, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.ClusterID, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.ClusterSize, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Related, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.TrendScore, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (beanSer) Size(v Bean) (size int) {
	size = ord.String.Size(v.URL)
	size += ord.String.Size(string(v.Kind))
	size += ord.String.Size(v.Source)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Summary)
	size += ord.String.Size(v.Content)
	size += ord.String.Size(v.Author)
	size += ord.String.Size(v.ImageURL)
	size += raw.TimeUnixMicro.Size(v.Created)
	size += raw.TimeUnixMicro.Size(v.Collected)
	size += raw.TimeUnixMicro.Size(v.Updated)
	size += varint.Int.Size(v.TitleWords)
	size += varint.Int.Size(v.SummaryWords)
	size += varint.Int.Size(v.ContentWords)
	size += ord.Bool.Size(v.Restricted)
	size += float32SliceMUS.Size(v.Embedding)
	size += ord.String.Size(v.Gist)
	size += stringSliceMUS.Size(v.Entities)
	size += stringSliceMUS.Size(v.Regions)
	size += stringSliceMUS.Size(v.Categories)
	size += stringSliceMUS.Size(v.Sentiments)
	size += IDMUS.Size(v.ClusterID)
	size += varint.Int.Size(v.ClusterSize)
	size += stringSliceMUS.Size(v.Related)
	size += varint.Int64.Size(v.TrendScore)
	return
}

type publisherSer struct{}

func (publisherSer) Marshal(v Publisher, bs []byte) (n int) {
	n = ord.String.Marshal(v.Source, bs)
	n += ord.String.Marshal(v.BaseURL, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Summary, bs[n:])
	n += ord.String.Marshal(v.Favicon, bs[n:])
	n += ord.String.Marshal(v.RSSFeed, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.Updated, bs[n:])
	return
}

func (publisherSer) Unmarshal(bs []byte) (v Publisher, n int, err error) {
	var n1 int
	if v.Source, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.BaseURL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Summary, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Favicon, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.RSSFeed, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Updated, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (publisherSer) Size(v Publisher) (size int) {
	size = ord.String.Size(v.Source)
	size += ord.String.Size(v.BaseURL)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Summary)
	size += ord.String.Size(v.Favicon)
	size += ord.String.Size(v.RSSFeed)
	size += raw.TimeUnixMicro.Size(v.Updated)
	return
}

type chatterSer struct{}

func (chatterSer) Marshal(v Chatter, bs []byte) (n int) {
	n = ord.String.Marshal(v.URL, bs)
	n += ord.String.Marshal(v.ChatterURL, bs[n:])
	n += ord.String.Marshal(v.Source, bs[n:])
	n += ord.String.Marshal(v.Forum, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.Collected, bs[n:])
	n += varint.Int.Marshal(v.Likes, bs[n:])
	n += varint.Int.Marshal(v.Comments, bs[n:])
	n += varint.Int.Marshal(v.Subscribers, bs[n:])
	return
}

func (chatterSer) Unmarshal(bs []byte) (v Chatter, n int, err error) {
	var n1 int
	if v.URL, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.ChatterURL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Source, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Forum, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Collected, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Likes, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Comments, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Subscribers, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (chatterSer) Size(v Chatter) (size int) {
	size = ord.String.Size(v.URL)
	size += ord.String.Size(v.ChatterURL)
	size += ord.String.Size(v.Source)
	size += ord.String.Size(v.Forum)
	size += raw.TimeUnixMicro.Size(v.Collected)
	size += varint.Int.Size(v.Likes)
	size += varint.Int.Size(v.Comments)
	size += varint.Int.Size(v.Subscribers)
	return
}

type aggregateSer struct{}

func (aggregateSer) Marshal(v ChatterAggregate, bs []byte) (n int) {
	n = ord.String.Marshal(v.URL, bs)
	n += varint.Int.Marshal(v.Likes, bs[n:])
	n += varint.Int.Marshal(v.Comments, bs[n:])
	n += varint.Int.Marshal(v.Subscribers, bs[n:])
	n += varint.Int.Marshal(v.Shares, bs[n:])
	n += stringSliceMUS.Marshal(v.SharedIn, bs[n:])
	n += varint.Int.Marshal(v.LikesChange, bs[n:])
	n += varint.Int.Marshal(v.CommentsChange, bs[n:])
	n += varint.Int.Marshal(v.SharesChange, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.Refreshed, bs[n:])
	return
}

func (aggregateSer) Unmarshal(bs []byte) (v ChatterAggregate, n int, err error) {
	var n1 int
	if v.URL, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.Likes, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Comments, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Subscribers, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Shares, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.SharedIn, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.LikesChange, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.CommentsChange, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.SharesChange, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Refreshed, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (aggregateSer) Size(v ChatterAggregate) (size int) {
	size = ord.String.Size(v.URL)
	size += varint.Int.Size(v.Likes)
	size += varint.Int.Size(v.Comments)
	size += varint.Int.Size(v.Subscribers)
	size += varint.Int.Size(v.Shares)
	size += stringSliceMUS.Size(v.SharedIn)
	size += varint.Int.Size(v.LikesChange)
	size += varint.Int.Size(v.CommentsChange)
	size += varint.Int.Size(v.SharesChange)
	size += raw.TimeUnixMicro.Size(v.Refreshed)
	return
}

type refVectorSer struct{}

func (refVectorSer) Marshal(v RefVector, bs []byte) (n int) {
	n = ord.String.Marshal(v.Label, bs)
	n += float32SliceMUS.Marshal(v.Embedding, bs[n:])
	return
}

func (refVectorSer) Unmarshal(bs []byte) (v RefVector, n int, err error) {
	var n1 int
	if v.Label, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.Embedding, n1, err = float32SliceMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (refVectorSer) Size(v RefVector) (size int) {
	size = ord.String.Size(v.Label)
	size += float32SliceMUS.Size(v.Embedding)
	return
}
