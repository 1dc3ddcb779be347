package linkdata

import (
	"sort"

	"github.com/astr0n0mer/linkli/src/models"
)

/*
Display order is derived, never stored as a sequence. Within a visibility
partition, links sort ascending by Order; gaps in the rank values are fine.
CreatedAt and then ID break ties, so a collection with duplicate ranks (which
a bare order update can produce) still has one deterministic display order.
*/
func DisplayLess(a, b *models.Link) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// Returns the owner's links of the given visibility, display-sorted. Does not
// modify the input slice.
func Partition(links []*models.Link, visibility models.LinkVisibility) []*models.Link {
	var result []*models.Link
	for _, link := range links {
		if link.Visibility == visibility {
			result = append(result, link)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return DisplayLess(result[i], result[j])
	})
	return result
}

// Sorts links for display. Owners see the public partition followed by the
// private partition; everyone else sees public links only.
func SortForDisplay(links []*models.Link, ownerView bool) []*models.Link {
	result := Partition(links, models.LinkVisibilityPublic)
	if ownerView {
		result = append(result, Partition(links, models.LinkVisibilityPrivate)...)
	}
	return result
}

// The rank a new link should get to append to the end of a partition: one
// past the partition's max, or 0 for an empty partition.
func NextOrder(links []*models.Link, visibility models.LinkVisibility) int {
	next := 0
	for _, link := range links {
		if link.Visibility == visibility && link.Order+1 > next {
			next = link.Order + 1
		}
	}
	return next
}
