package client

import (
	"sort"
	"sync"
)

/*
A local mirror of a user's link collection, kept in display order. Mutations
mirror the server's rules: ranks are swapped in place rather than
renumbered, links going public append to the end of the public partition,
and edits re-sort the list. State only changes through these actions, so a
UI can treat the slice returned by Links as its render input.
*/
type Store struct {
	mu    sync.Mutex
	links []Link
}

func NewStore() *Store {
	return &Store{}
}

const (
	visibilityPublic  = "public"
	visibilityPrivate = "private"
)

// The server's display comparator: public before private, then rank, with
// creation time and id breaking ties.
func displayLess(a, b *Link) bool {
	if a.Visibility != b.Visibility {
		return a.Visibility == visibilityPublic
	}
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// Returns a copy of the links in display order.
func (s *Store) Links() []Link {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Link, len(s.links))
	copy(result, s.links)
	return result
}

func (s *Store) SetLinks(links []Link) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.links = make([]Link, len(links))
	copy(s.links, links)
	s.sort()
}

func (s *Store) AddLink(link Link) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.links = append(s.links, link)
	s.sort()
}

// Replaces the link with the same id. An edit can change rank or
// visibility, so the list re-sorts.
func (s *Store) EditLink(link Link) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.links {
		if s.links[i].ID == link.ID {
			s.links[i] = link
			break
		}
	}
	s.sort()
}

func (s *Store) DeleteLink(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.links {
		if s.links[i].ID == id {
			s.links = append(s.links[:i], s.links[i+1:]...)
			break
		}
	}
}

/*
Moves a link one step within its visibility partition by swapping rank
values with its display neighbor, exactly like the server. Boundary moves
and unknown ids are no-ops.
*/
func (s *Store) MoveLink(id string, direction string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var partition []*Link
	var target *Link
	for i := range s.links {
		if s.links[i].ID == id {
			target = &s.links[i]
		}
	}
	if target == nil {
		return
	}
	for i := range s.links {
		if s.links[i].Visibility == target.Visibility {
			partition = append(partition, &s.links[i])
		}
	}
	sort.SliceStable(partition, func(i, j int) bool {
		return displayLess(partition[i], partition[j])
	})

	idx := -1
	for i, link := range partition {
		if link.ID == id {
			idx = i
			break
		}
	}

	neighbor := idx - 1
	if direction == "down" {
		neighbor = idx + 1
	}
	if neighbor < 0 || neighbor >= len(partition) {
		return
	}

	partition[idx].Order, partition[neighbor].Order = partition[neighbor].Order, partition[idx].Order
	s.sort()
}

// Flips a link's visibility locally, appending to the public partition on
// the way public and keeping rank on the way private.
func (s *Store) ToggleVisibility(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var target *Link
	for i := range s.links {
		if s.links[i].ID == id {
			target = &s.links[i]
		}
	}
	if target == nil {
		return
	}

	if target.Visibility == visibilityPrivate {
		maxOrder := -1
		for i := range s.links {
			if s.links[i].Visibility == visibilityPublic && s.links[i].Order > maxOrder {
				maxOrder = s.links[i].Order
			}
		}
		target.Visibility = visibilityPublic
		target.Order = maxOrder + 1
	} else {
		target.Visibility = visibilityPrivate
	}
	s.sort()
}

// Caller must hold s.mu.
func (s *Store) sort() {
	sort.SliceStable(s.links, func(i, j int) bool {
		return displayLess(&s.links[i], &s.links[j])
	})
}
