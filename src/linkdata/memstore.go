package linkdata

import (
	"context"
	"sync"
	"time"

	"github.com/astr0n0mer/linkli/src/db"
	"github.com/astr0n0mer/linkli/src/models"
)

/*
An in-memory Store. It backs tests and the "memory" storage mode for local
development; state lives entirely in the handle, so two MemStores never share
anything. All records are copied on the way in and out so callers can't
mutate stored state behind the mutex's back.
*/
type MemStore struct {
	mu       sync.Mutex
	links    map[string]*models.Link
	profiles map[string]*models.Profile
}

var _ Store = &MemStore{}

func NewMemStore() *MemStore {
	return &MemStore{
		links:    make(map[string]*models.Link),
		profiles: make(map[string]*models.Profile),
	}
}

func (s *MemStore) FindLinksByOwner(ctx context.Context, ownerID string) ([]*models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Link
	for _, link := range s.links {
		if link.OwnerID == ownerID {
			clone := *link
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (s *MemStore) FindLink(ctx context.Context, id string) (*models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[id]
	if !ok {
		return nil, db.NotFound
	}
	clone := *link
	return &clone, nil
}

func (s *MemStore) InsertLink(ctx context.Context, link *models.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ownerHasSlug(link.OwnerID, link.Slug, link.ID) {
		return ErrDuplicateSlug
	}

	clone := *link
	s.links[link.ID] = &clone
	return nil
}

func (s *MemStore) UpdateLinkFields(ctx context.Context, id string, patch LinkPatch) (*models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[id]
	if !ok {
		return nil, db.NotFound
	}

	if patch.Slug != nil && s.ownerHasSlug(link.OwnerID, *patch.Slug, id) {
		return nil, ErrDuplicateSlug
	}

	if patch.Title != nil {
		link.Title = *patch.Title
	}
	if patch.URL != nil {
		link.URL = *patch.URL
	}
	if patch.Slug != nil {
		link.Slug = *patch.Slug
	}
	if patch.Category != nil {
		link.Category = *patch.Category
	}
	if patch.Visibility != nil {
		link.Visibility = *patch.Visibility
	}
	if patch.Order != nil {
		link.Order = *patch.Order
	}
	link.UpdatedAt = time.Now()

	clone := *link
	return &clone, nil
}

func (s *MemStore) DeleteLink(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.links[id]
	delete(s.links, id)
	return ok, nil
}

func (s *MemStore) DeleteLinksByOwner(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, link := range s.links {
		if link.OwnerID == ownerID {
			delete(s.links, id)
		}
	}
	return nil
}

func (s *MemStore) FindProfile(ctx context.Context, userID string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return nil, db.NotFound
	}
	clone := *profile
	return &clone, nil
}

func (s *MemStore) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *profile
	s.profiles[profile.UserID] = &clone
	return nil
}

func (s *MemStore) DeleteProfile(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.profiles, userID)
	return nil
}

// Caller must hold s.mu.
func (s *MemStore) ownerHasSlug(ownerID string, slug string, excludeID string) bool {
	for _, link := range s.links {
		if link.ID != excludeID && link.OwnerID == ownerID && link.Slug == slug {
			return true
		}
	}
	return false
}
