package linkdata

import (
	"context"
	"errors"
	"strings"

	"github.com/astr0n0mer/linkli/src/db"
	"github.com/astr0n0mer/linkli/src/models"
)

/*
Fetches a user's profile, creating an empty one on first access. Display
name and avatar are owned by the identity provider and merged in at the
response layer; this record is bio only.
*/
func FetchProfile(ctx context.Context, s ProfileStore, userID string) (*models.Profile, error) {
	profile, err := s.FindProfile(ctx, userID)
	if errors.Is(err, db.NotFound) {
		profile = &models.Profile{UserID: userID}
		err = s.UpsertProfile(ctx, profile)
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Sets a user's bio, creating the profile if necessary.
func UpdateBio(ctx context.Context, s ProfileStore, userID string, bio string) (*models.Profile, error) {
	profile := &models.Profile{
		UserID: userID,
		Bio:    strings.TrimSpace(bio),
	}
	err := s.UpsertProfile(ctx, profile)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Creates an empty profile for a freshly-registered user if they don't have
// one yet. Never clobbers an existing bio.
func EnsureProfile(ctx context.Context, s ProfileStore, userID string) error {
	_, err := s.FindProfile(ctx, userID)
	if errors.Is(err, db.NotFound) {
		return s.UpsertProfile(ctx, &models.Profile{UserID: userID})
	}
	return err
}

// Removes everything we store about a user: their profile and all of their
// links. Used when the identity provider reports an account deletion.
func DeleteUserData(ctx context.Context, s Store, userID string) error {
	err := s.DeleteLinksByOwner(ctx, userID)
	if err != nil {
		return err
	}
	return s.DeleteProfile(ctx, userID)
}
