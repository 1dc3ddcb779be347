package website

import (
	"errors"
	"net/http"

	"github.com/astr0n0mer/linkli/src/db"
	"github.com/astr0n0mer/linkli/src/identity"
	"github.com/astr0n0mer/linkli/src/linkdata"
	"github.com/astr0n0mer/linkli/src/models"
	"github.com/astr0n0mer/linkli/src/siteurl"
)

/*
The profile a caller sees is a read-time merge: we store the bio, the
identity provider owns the username, display name, and avatar. When the
identity lookup fails, the enrichable fields come back empty rather than
failing the whole read.
*/
type ProfileJson struct {
	UserID      string `json:"userId"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarUrl   string `json:"avatarUrl,omitempty"`
	Bio         string `json:"bio"`
	ProfileUrl  string `json:"profileUrl,omitempty"`
}

func profileToJson(c *RequestContext, profile *models.Profile) ProfileJson {
	result := ProfileJson{
		UserID: profile.UserID,
		Bio:    profile.Bio,
	}

	user, err := c.Identity.DisplayInfo(c, profile.UserID)
	if err != nil {
		c.Logger.Warn().Err(err).Msg("failed to enrich profile with identity info")
		return result
	}

	result.Username = user.Username
	result.DisplayName = user.DisplayName
	result.AvatarUrl = user.AvatarUrl
	if user.Username != "" {
		result.ProfileUrl = siteurl.BuildUserProfile(user.Username)
	}
	return result
}

func GetOwnProfile(c *RequestContext) ResponseData {
	profile, err := linkdata.FetchProfile(c, c.Store, c.CurrentUserID)
	if err != nil {
		return linkErrorResponse(c, err)
	}
	return c.DataResponse(http.StatusOK, profileToJson(c, profile))
}

type updateProfileBody struct {
	Bio string `json:"bio"`
}

func UpdateOwnProfile(c *RequestContext) ResponseData {
	var body updateProfileBody
	err := c.ParseJson(&body)
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest)
	}

	profile, err := linkdata.UpdateBio(c, c.Store, c.CurrentUserID, body.Bio)
	if err != nil {
		return linkErrorResponse(c, err)
	}
	return c.DataResponse(http.StatusOK, profileToJson(c, profile))
}

/*
Public profile lookup by user id. This is a read, so it never lazily creates
a profile record; users we've never stored a bio for just come back with an
empty one. 404s only when the identity provider positively says the user
doesn't exist and we have nothing stored either.
*/
func GetProfileByUserId(c *RequestContext) ResponseData {
	userID := c.PathParams["userId"]

	profile, err := c.Store.FindProfile(c, userID)
	if errors.Is(err, db.NotFound) {
		_, identityErr := c.Identity.DisplayInfo(c, userID)
		if errors.Is(identityErr, identity.ErrUserNotFound) {
			return c.ErrorResponse(http.StatusNotFound)
		}
		profile = &models.Profile{UserID: userID}
	} else if err != nil {
		return linkErrorResponse(c, err)
	}

	return c.DataResponse(http.StatusOK, profileToJson(c, profile))
}

// Public profile lookup by username. Unlike the by-id view, this cannot
// degrade: without the identity provider there is no way to resolve the
// username at all.
func GetProfileByUsername(c *RequestContext) ResponseData {
	user, err := c.Identity.UserByUsername(c, c.PathParams["username"])
	if err != nil {
		return linkErrorResponse(c, err)
	}

	profile, err := c.Store.FindProfile(c, user.ID)
	if errors.Is(err, db.NotFound) {
		profile = &models.Profile{UserID: user.ID}
	} else if err != nil {
		return linkErrorResponse(c, err)
	}

	return c.DataResponse(http.StatusOK, ProfileJson{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		AvatarUrl:   user.AvatarUrl,
		Bio:         profile.Bio,
		ProfileUrl:  siteurl.BuildUserProfile(user.Username),
	})
}
