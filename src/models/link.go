package models

import "time"

type LinkVisibility string

const (
	LinkVisibilityPublic  LinkVisibility = "public"
	LinkVisibilityPrivate LinkVisibility = "private"
)

func (v LinkVisibility) Valid() bool {
	return v == LinkVisibilityPublic || v == LinkVisibilityPrivate
}

func (v LinkVisibility) Toggled() LinkVisibility {
	if v == LinkVisibilityPublic {
		return LinkVisibilityPrivate
	}
	return LinkVisibilityPublic
}

type Link struct {
	ID      string `db:"id"`
	OwnerID string `db:"owner_id"`

	Title    string `db:"title"`
	URL      string `db:"url"`
	Slug     string `db:"slug"`
	Category string `db:"category"`

	Visibility LinkVisibility `db:"visibility"`

	// Rank within the link's visibility partition. Gaps are expected and
	// fine; only relative rank matters for display.
	Order int `db:"display_order"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
