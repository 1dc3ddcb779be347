package website

import (
	"errors"
	"net/http"

	"github.com/astr0n0mer/linkli/src/db"
	"github.com/astr0n0mer/linkli/src/identity"
	"github.com/astr0n0mer/linkli/src/linkdata"
)

func FourOhFour(c *RequestContext) ResponseData {
	return c.ErrorResponse(http.StatusNotFound)
}

/*
Maps a failed link/profile operation to a response. Existence beats
ownership, so an unknown id is a 404 even for a caller who wouldn't have
owned it. Only unexpected errors get attached for logging.
*/
func linkErrorResponse(c *RequestContext, err error) ResponseData {
	var verr *linkdata.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.ErrorResponse(http.StatusBadRequest, err)
	case errors.Is(err, db.NotFound) || errors.Is(err, identity.ErrUserNotFound):
		return c.ErrorResponse(http.StatusNotFound)
	case errors.Is(err, linkdata.ErrForbidden):
		return c.ErrorResponse(http.StatusForbidden)
	default:
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
}

// True for errors that indicate trouble at the storage layer rather than a
// problem with the request itself.
func ErrorIsPersistence(err error) bool {
	var verr *linkdata.ValidationError
	return !errors.As(err, &verr) &&
		!errors.Is(err, db.NotFound) &&
		!errors.Is(err, identity.ErrUserNotFound) &&
		!errors.Is(err, linkdata.ErrForbidden)
}
