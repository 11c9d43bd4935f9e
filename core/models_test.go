package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := IDFromContent("https://example.org/story")
		b := IDFromContent("https://example.org/story")
		assert.Equal(t, a, b)
	})

	t.Run("distinct content distinct ids", func(t *testing.T) {
		a := IDFromContent("https://example.org/story")
		b := IDFromContent("https://example.org/other")
		assert.NotEqual(t, a, b)
	})
}

func TestValidKind(t *testing.T) {
	assert.True(t, ValidKind(KindNews))
	assert.True(t, ValidKind(KindPost))
	assert.True(t, ValidKind(KindComment))
	assert.False(t, ValidKind(Kind("")))
	assert.False(t, ValidKind(Kind("video")))
}

func TestBean_ID(t *testing.T) {
	bean := &Bean{URL: "https://example.org/story"}
	assert.Equal(t, IDFromContent("https://example.org/story"), bean.ID())

	// Identity derives from URL alone
	other := &Bean{URL: "https://example.org/story", Title: "different"}
	assert.Equal(t, bean.ID(), other.ID())
}

func TestBean_DeriveCounts(t *testing.T) {
	bean := &Bean{
		Title:   "Solar grid expansion approved",
		Summary: "The council approved it",
		Content: "",
	}
	bean.DeriveCounts()

	assert.Equal(t, 4, bean.TitleWords)
	assert.Equal(t, 4, bean.SummaryWords)
	assert.Equal(t, 0, bean.ContentWords)
}

func TestPublisher_ID(t *testing.T) {
	a := &Publisher{Source: "example.org"}
	b := &Publisher{Source: "example.org", Title: "Example"}
	assert.Equal(t, a.ID(), b.ID())
}
