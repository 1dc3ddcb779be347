package website

import (
	"errors"
	"net/http"
	"time"

	"github.com/astr0n0mer/linkli/src/identity"

	"github.com/astr0n0mer/linkli/src/linkdata"
	"github.com/astr0n0mer/linkli/src/links"
	"github.com/astr0n0mer/linkli/src/models"
	"github.com/astr0n0mer/linkli/src/siteurl"
)

type LinkJson struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Slug       string    `json:"slug"`
	Category   string    `json:"category"`
	Visibility string    `json:"visibility"`
	Order      int       `json:"order"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// What everyone else sees: no visibility or timestamps, but decorated with
// the recognized service and the public short URL.
type PublicLinkJson struct {
	Title           string `json:"title"`
	URL             string `json:"url"`
	Category        string `json:"category"`
	ShortUrl        string `json:"shortUrl,omitempty"`
	ServiceIcon     string `json:"serviceIcon"`
	ServiceUsername string `json:"serviceUsername,omitempty"`
}

func LinkToJson(link *models.Link) LinkJson {
	return LinkJson{
		ID:         link.ID,
		Title:      link.Title,
		URL:        link.URL,
		Slug:       link.Slug,
		Category:   link.Category,
		Visibility: string(link.Visibility),
		Order:      link.Order,
		CreatedAt:  link.CreatedAt,
		UpdatedAt:  link.UpdatedAt,
	}
}

func LinksToJson(ls []*models.Link) []LinkJson {
	result := make([]LinkJson, 0, len(ls))
	for _, link := range ls {
		result = append(result, LinkToJson(link))
	}
	return result
}

func LinkToPublicJson(username string, link *models.Link) PublicLinkJson {
	service, serviceUsername := links.ParseKnownServicesForUrl(link.URL)
	result := PublicLinkJson{
		Title:           link.Title,
		URL:             link.URL,
		Category:        link.Category,
		ServiceIcon:     service.IconName,
		ServiceUsername: serviceUsername,
	}
	// Short links hang off the username's profile page, so there is nothing
	// to build when the username is unknown.
	if username != "" {
		result.ShortUrl = siteurl.BuildShortLink(username, link.Slug)
	}
	return result
}

func GetLinks(c *RequestContext) ResponseData {
	list, err := linkdata.FetchLinks(c, c.Store, c.CurrentUserID, true)
	if err != nil {
		return linkErrorResponse(c, err)
	}
	return c.DataResponse(http.StatusOK, LinksToJson(list))
}

func GetLink(c *RequestContext) ResponseData {
	link, err := linkdata.FetchLink(c, c.Store, c.PathParams["id"], c.CurrentUserID)
	if err != nil {
		return linkErrorResponse(c, err)
	}
	return c.DataResponse(http.StatusOK, LinkToJson(link))
}

type createLinkBody struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Slug       string `json:"slug"`
	Category   string `json:"category"`
	Visibility string `json:"visibility"`
}

func CreateLink(c *RequestContext) ResponseData {
	var body createLinkBody
	err := c.ParseJson(&body)
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest)
	}

	link, err := linkdata.CreateLink(c, c.Store, c.CurrentUserID, linkdata.LinkInput{
		Title:      body.Title,
		URL:        body.URL,
		Slug:       body.Slug,
		Category:   body.Category,
		Visibility: models.LinkVisibility(body.Visibility),
	})
	if err != nil {
		return linkErrorResponse(c, err)
	}
	return c.DataResponse(http.StatusCreated, LinkToJson(link))
}

type updateLinkBody struct {
	Title      *string `json:"title"`
	URL        *string `json:"url"`
	Slug       *string `json:"slug"`
	Category   *string `json:"category"`
	Visibility *string `json:"visibility"`
	Order      *int    `json:"order"`
}

func UpdateLink(c *RequestContext) ResponseData {
	var body updateLinkBody
	err := c.ParseJson(&body)
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest)
	}

	patch := linkdata.LinkPatch{
		Title:    body.Title,
		URL:      body.URL,
		Slug:     body.Slug,
		Category: body.Category,
		Order:    body.Order,
	}
	if body.Visibility != nil {
		visibility := models.LinkVisibility(*body.Visibility)
		patch.Visibility = &visibility
	}

	link, err := linkdata.UpdateLink(c, c.Store, c.PathParams["id"], c.CurrentUserID, patch)
	if err != nil {
		return linkErrorResponse(c, err)
	}
	return c.DataResponse(http.StatusOK, LinkToJson(link))
}

func DeleteLink(c *RequestContext) ResponseData {
	err := linkdata.DeleteLink(c, c.Store, c.PathParams["id"], c.CurrentUserID)
	if err != nil {
		return linkErrorResponse(c, err)
	}
	return ResponseData{StatusCode: http.StatusNoContent}
}

type moveLinkBody struct {
	Direction string `json:"direction"`
}

func MoveLink(c *RequestContext) ResponseData {
	var body moveLinkBody
	err := c.ParseJson(&body)
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest)
	}

	list, err := linkdata.MoveLink(c, c.Store, c.PathParams["id"], c.CurrentUserID, linkdata.MoveDirection(body.Direction))
	if err != nil {
		if !ErrorIsPersistence(err) {
			return linkErrorResponse(c, err)
		}

		// The rank swap may have half-applied. Hand the client a fresh list
		// alongside the error so it can resynchronize.
		res := c.ErrorResponse(http.StatusInternalServerError, err)
		fresh, ferr := linkdata.FetchLinks(c, c.Store, c.CurrentUserID, true)
		if ferr == nil {
			res.Body = nil
			res.WriteJson(struct {
				Error string     `json:"error"`
				Data  []LinkJson `json:"data"`
			}{
				Error: http.StatusText(http.StatusInternalServerError),
				Data:  LinksToJson(fresh),
			})
		}
		return res
	}
	return c.DataResponse(http.StatusOK, LinksToJson(list))
}

func ToggleLinkVisibility(c *RequestContext) ResponseData {
	link, err := linkdata.ToggleVisibility(c, c.Store, c.PathParams["id"], c.CurrentUserID)
	if err != nil {
		return linkErrorResponse(c, err)
	}
	return c.DataResponse(http.StatusOK, LinkToJson(link))
}

func PublicLinksForUser(c *RequestContext) ResponseData {
	user, err := c.Identity.UserByUsername(c, c.PathParams["username"])
	if err != nil {
		return linkErrorResponse(c, err)
	}

	list, err := linkdata.FetchLinks(c, c.Store, user.ID, false)
	if err != nil {
		return linkErrorResponse(c, err)
	}

	result := make([]PublicLinkJson, 0, len(list))
	for _, link := range list {
		result = append(result, LinkToPublicJson(user.Username, link))
	}
	return c.DataResponse(http.StatusOK, result)
}

// Public links addressed by user id instead of username. The username only
// decorates the short links here, so an identity outage degrades the
// response instead of failing it.
func PublicLinksForUserId(c *RequestContext) ResponseData {
	userID := c.PathParams["userId"]

	list, err := linkdata.FetchLinks(c, c.Store, userID, false)
	if err != nil {
		return linkErrorResponse(c, err)
	}

	username := ""
	user, identityErr := c.Identity.DisplayInfo(c, userID)
	switch {
	case identityErr == nil:
		username = user.Username
	case errors.Is(identityErr, identity.ErrUserNotFound):
		if len(list) == 0 {
			return c.ErrorResponse(http.StatusNotFound)
		}
	default:
		c.Logger.Warn().Err(identityErr).Msg("failed to resolve username for public links")
	}

	result := make([]PublicLinkJson, 0, len(list))
	for _, link := range list {
		result = append(result, LinkToPublicJson(username, link))
	}
	return c.DataResponse(http.StatusOK, result)
}
