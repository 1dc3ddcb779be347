package linkdata

import (
	"testing"
	"time"

	"github.com/astr0n0mer/linkli/src/models"
	"github.com/stretchr/testify/assert"
)

func TestDisplayLess(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("sorts by rank", func(t *testing.T) {
		a := &models.Link{ID: "a", Order: 0, CreatedAt: base}
		b := &models.Link{ID: "b", Order: 5, CreatedAt: base}
		assert.True(t, DisplayLess(a, b))
		assert.False(t, DisplayLess(b, a))
	})

	t.Run("breaks rank ties by creation time", func(t *testing.T) {
		a := &models.Link{ID: "a", Order: 3, CreatedAt: base.Add(time.Minute)}
		b := &models.Link{ID: "b", Order: 3, CreatedAt: base}
		assert.True(t, DisplayLess(b, a))
		assert.False(t, DisplayLess(a, b))
	})

	t.Run("breaks full ties by id", func(t *testing.T) {
		a := &models.Link{ID: "a", Order: 3, CreatedAt: base}
		b := &models.Link{ID: "b", Order: 3, CreatedAt: base}
		assert.True(t, DisplayLess(a, b))
		assert.False(t, DisplayLess(b, a))
	})
}

func TestSortForDisplay(t *testing.T) {
	links := []*models.Link{
		{ID: "pub2", Visibility: models.LinkVisibilityPublic, Order: 7},
		{ID: "priv1", Visibility: models.LinkVisibilityPrivate, Order: 0},
		{ID: "pub1", Visibility: models.LinkVisibilityPublic, Order: 2},
		{ID: "priv2", Visibility: models.LinkVisibilityPrivate, Order: 4},
	}

	t.Run("owner view is public then private", func(t *testing.T) {
		sorted := SortForDisplay(links, true)
		assert.Equal(t, []string{"pub1", "pub2", "priv1", "priv2"}, linkIDs(sorted))
	})

	t.Run("public view hides private links", func(t *testing.T) {
		sorted := SortForDisplay(links, false)
		assert.Equal(t, []string{"pub1", "pub2"}, linkIDs(sorted))
	})
}

func TestNextOrder(t *testing.T) {
	links := []*models.Link{
		{ID: "pub", Visibility: models.LinkVisibilityPublic, Order: 9},
		{ID: "priv", Visibility: models.LinkVisibilityPrivate, Order: 2},
	}

	assert.Equal(t, 10, NextOrder(links, models.LinkVisibilityPublic))
	assert.Equal(t, 3, NextOrder(links, models.LinkVisibilityPrivate))
	assert.Equal(t, 0, NextOrder(nil, models.LinkVisibilityPublic))
}

func linkIDs(links []*models.Link) []string {
	ids := make([]string, len(links))
	for i, link := range links {
		ids[i] = link.ID
	}
	return ids
}
