package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lojf/campreg/internal/models"
)

func TestSplitItems(t *testing.T) {
	assert.Equal(t, []string{"طحين", "زيت", "rice", "oil"}, SplitItems("طحين،زيت, rice ;oil,,"))
	assert.Nil(t, SplitItems("  "))
}

func TestAidIndex(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	idx := NewAidIndex([]models.AidDelivery{
		{FamilyID: 1, Date: jan, Items: "soap"},
		{FamilyID: 1, Date: mar, Items: "Rice، Oil"},
		{FamilyID: 1, Date: jan, Items: "Flour"},
	})

	date, items, ok := idx.Last(1)
	assert.True(t, ok)
	assert.Equal(t, mar, date, "latest by date, not by input order")
	assert.Equal(t, "Rice، Oil", items)

	assert.Equal(t, []string{"oil", "rice"}, idx.items(1))
	assert.True(t, idx.HasAny(1, []string{" OIL "}))
	assert.False(t, idx.HasAny(1, []string{"soap"}), "older deliveries do not count")
	assert.False(t, idx.HasAny(1, []string{"flour"}), "older deliveries do not count")
	assert.False(t, idx.HasAny(2, []string{"rice"}))

	_, _, ok = idx.Last(2)
	assert.False(t, ok)

	// copies do not alias the index
	got := idx.items(1)
	got[0] = "changed"
	assert.Equal(t, "oil", idx.items(1)[0])

	var empty *AidIndex
	assert.False(t, empty.HasAny(1, []string{"rice"}))
}
