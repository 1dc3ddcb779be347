package linkdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/astr0n0mer/linkli/src/models"
)

// The caller's identity does not own the target record.
var ErrForbidden = errors.New("forbidden")

// A slug insert/update collided with another link of the same owner. Stores
// return this; the operation layer turns it into a ValidationError.
var ErrDuplicateSlug = errors.New("duplicate slug for owner")

// A create or update was rejected before touching storage.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Fields of a link that may change after creation. Nil fields are left
// untouched. ID, owner, and creation time are never patchable.
type LinkPatch struct {
	Title      *string
	URL        *string
	Slug       *string
	Category   *string
	Visibility *models.LinkVisibility
	Order      *int
}

// The persistence contract for links. Missing records are reported with
// db.NotFound. Slug collisions within an owner are reported with
// ErrDuplicateSlug. Implementations must be safe for concurrent use.
type LinkStore interface {
	// Fetches all of an owner's links, in no particular order.
	FindLinksByOwner(ctx context.Context, ownerID string) ([]*models.Link, error)
	FindLink(ctx context.Context, id string) (*models.Link, error)
	InsertLink(ctx context.Context, link *models.Link) error
	// Applies the non-nil patch fields and refreshes UpdatedAt. Returns the
	// updated record.
	UpdateLinkFields(ctx context.Context, id string, patch LinkPatch) (*models.Link, error)
	// Reports whether a record was actually removed.
	DeleteLink(ctx context.Context, id string) (bool, error)
	DeleteLinksByOwner(ctx context.Context, ownerID string) error
}

type ProfileStore interface {
	FindProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, profile *models.Profile) error
	DeleteProfile(ctx context.Context, userID string) error
}

type Store interface {
	LinkStore
	ProfileStore
}
