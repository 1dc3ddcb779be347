package linkdata

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/astr0n0mer/linkli/src/models"
	"github.com/astr0n0mer/linkli/src/oops"
	"github.com/google/uuid"
	"mvdan.cc/xurls/v2"
)

type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

func (d MoveDirection) Valid() bool {
	return d == MoveUp || d == MoveDown
}

// Everything a caller provides when creating a link. Visibility defaults to
// public, category to empty.
type LinkInput struct {
	Title      string
	URL        string
	Slug       string
	Category   string
	Visibility models.LinkVisibility
}

var reStrictUrl = xurls.Strict()

func validateUrl(url string) *ValidationError {
	if match := reStrictUrl.FindString(url); match != url {
		return &ValidationError{Field: "url", Message: "must be a valid absolute URL"}
	}
	return nil
}

/*
Fetches an owner's links, display-sorted. Owners see public links followed by
private ones; everyone else sees public links only.
*/
func FetchLinks(ctx context.Context, s LinkStore, ownerID string, ownerView bool) ([]*models.Link, error) {
	links, err := s.FindLinksByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return SortForDisplay(links, ownerView), nil
}

/*
Fetches a single link on behalf of a caller. Returns db.NotFound for unknown
ids and ErrForbidden for links the caller doesn't own, in that order of
precedence.
*/
func FetchLink(ctx context.Context, s LinkStore, id string, callerID string) (*models.Link, error) {
	link, err := s.FindLink(ctx, id)
	if err != nil {
		return nil, err
	}
	if link.OwnerID != callerID {
		return nil, ErrForbidden
	}
	return link, nil
}

/*
Creates a link at the end of its visibility partition. The new link's rank is
one past the partition's current max, or 0 if the partition is empty, so
creation order is display order within each partition.
*/
func CreateLink(ctx context.Context, s LinkStore, ownerID string, input LinkInput) (*models.Link, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.URL = strings.TrimSpace(input.URL)
	input.Slug = strings.TrimSpace(input.Slug)
	input.Category = strings.TrimSpace(input.Category)

	if input.Title == "" {
		return nil, &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if input.URL == "" {
		return nil, &ValidationError{Field: "url", Message: "must not be empty"}
	}
	if input.Slug == "" {
		return nil, &ValidationError{Field: "slug", Message: "must not be empty"}
	}
	if verr := validateUrl(input.URL); verr != nil {
		return nil, verr
	}
	if input.Visibility == "" {
		input.Visibility = models.LinkVisibilityPublic
	}
	if !input.Visibility.Valid() {
		return nil, &ValidationError{Field: "visibility", Message: "must be public or private"}
	}

	existing, err := s.FindLinksByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	link := &models.Link{
		ID:         uuid.New().String(),
		OwnerID:    ownerID,
		Title:      input.Title,
		URL:        input.URL,
		Slug:       input.Slug,
		Category:   input.Category,
		Visibility: input.Visibility,
		Order:      NextOrder(existing, input.Visibility),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.InsertLink(ctx, link)
	if errors.Is(err, ErrDuplicateSlug) {
		return nil, &ValidationError{Field: "slug", Message: "already in use by another of your links"}
	} else if err != nil {
		return nil, err
	}

	return link, nil
}

/*
Merges the patch into an owned link. Existence is checked before ownership,
so updating an unknown id is db.NotFound even for a caller who wouldn't have
owned it. A bare order update is accepted as-is; keeping ranks collision-free
is move/toggle's job, and the display sort tolerates ties regardless.
*/
func UpdateLink(ctx context.Context, s LinkStore, id string, callerID string, patch LinkPatch) (*models.Link, error) {
	_, err := FetchLink(ctx, s, id, callerID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if trimmed == "" {
			return nil, &ValidationError{Field: "title", Message: "must not be empty"}
		}
		patch.Title = &trimmed
	}
	if patch.URL != nil {
		trimmed := strings.TrimSpace(*patch.URL)
		if trimmed == "" {
			return nil, &ValidationError{Field: "url", Message: "must not be empty"}
		}
		if verr := validateUrl(trimmed); verr != nil {
			return nil, verr
		}
		patch.URL = &trimmed
	}
	if patch.Slug != nil {
		trimmed := strings.TrimSpace(*patch.Slug)
		if trimmed == "" {
			return nil, &ValidationError{Field: "slug", Message: "must not be empty"}
		}
		patch.Slug = &trimmed
	}
	if patch.Category != nil {
		trimmed := strings.TrimSpace(*patch.Category)
		patch.Category = &trimmed
	}
	if patch.Visibility != nil && !patch.Visibility.Valid() {
		return nil, &ValidationError{Field: "visibility", Message: "must be public or private"}
	}

	updated, err := s.UpdateLinkFields(ctx, id, patch)
	if errors.Is(err, ErrDuplicateSlug) {
		return nil, &ValidationError{Field: "slug", Message: "already in use by another of your links"}
	} else if err != nil {
		return nil, err
	}

	return updated, nil
}

/*
Moves a link one step up or down within its own visibility partition by
swapping rank values with its display neighbor. Moving the first link up or
the last link down is a no-op. Exactly two records change (or zero); links in
the other partition are never touched.

The two rank writes are independent and both are attempted even if the first
fails; on partial failure the collection can show a transient inconsistency,
which the next full fetch resolves since display order only depends on
relative rank. Returns the owner's refreshed link list.
*/
func MoveLink(ctx context.Context, s LinkStore, id string, callerID string, direction MoveDirection) ([]*models.Link, error) {
	if !direction.Valid() {
		return nil, &ValidationError{Field: "direction", Message: "must be up or down"}
	}

	link, err := FetchLink(ctx, s, id, callerID)
	if err != nil {
		return nil, err
	}

	all, err := s.FindLinksByOwner(ctx, callerID)
	if err != nil {
		return nil, err
	}
	partition := Partition(all, link.Visibility)

	i := -1
	for idx, l := range partition {
		if l.ID == id {
			i = idx
			break
		}
	}
	if i < 0 {
		return nil, oops.New(nil, "link %s missing from its own partition", id)
	}

	j := i - 1
	if direction == MoveDown {
		j = i + 1
	}
	if j < 0 || j >= len(partition) {
		// Already at the partition boundary.
		return SortForDisplay(all, true), nil
	}

	orderI := partition[j].Order
	orderJ := partition[i].Order
	_, errI := s.UpdateLinkFields(ctx, partition[i].ID, LinkPatch{Order: &orderI})
	_, errJ := s.UpdateLinkFields(ctx, partition[j].ID, LinkPatch{Order: &orderJ})
	if errI != nil || errJ != nil {
		return nil, oops.New(errors.Join(errI, errJ), "failed to persist rank swap")
	}

	return FetchLinks(ctx, s, callerID, true)
}

/*
Flips a link between public and private. A link going public is appended to
the end of the public partition, since its old rank was only meaningful among
private links. A link going private keeps its rank.
*/
func ToggleVisibility(ctx context.Context, s LinkStore, id string, callerID string) (*models.Link, error) {
	link, err := FetchLink(ctx, s, id, callerID)
	if err != nil {
		return nil, err
	}

	newVisibility := link.Visibility.Toggled()
	patch := LinkPatch{Visibility: &newVisibility}

	if newVisibility == models.LinkVisibilityPublic {
		all, err := s.FindLinksByOwner(ctx, callerID)
		if err != nil {
			return nil, err
		}
		newOrder := NextOrder(all, models.LinkVisibilityPublic)
		patch.Order = &newOrder
	}

	return s.UpdateLinkFields(ctx, id, patch)
}

// Deletes an owned link. Remaining ranks are not renumbered; gaps are fine.
func DeleteLink(ctx context.Context, s LinkStore, id string, callerID string) error {
	_, err := FetchLink(ctx, s, id, callerID)
	if err != nil {
		return err
	}

	_, err = s.DeleteLink(ctx, id)
	return err
}
