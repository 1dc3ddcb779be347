package website

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/astr0n0mer/linkli/src/identity"
	"github.com/astr0n0mer/linkli/src/oops"
)

func panicCatcherMiddleware(h Handler) Handler {
	return func(c *RequestContext) (res ResponseData) {
		defer func() {
			if recovered := recover(); recovered != nil {
				maybeError, ok := recovered.(*error)
				var err error
				if ok {
					err = *maybeError
				} else {
					err = oops.New(nil, fmt.Sprintf("Recovered from panic with value: %v", recovered))
				}
				res = c.ErrorResponse(http.StatusInternalServerError, err)
			}
		}()

		return h(c)
	}
}

func trackRequestMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		start := time.Now()
		res := h(c)
		c.Logger.Info().
			Int("status", res.StatusCode).
			Msg(fmt.Sprintf("Served [%s] %s in %.4fms", c.Req.Method, c.Req.URL.Path, float64(time.Since(start).Nanoseconds())/1000/1000))
		return res
	}
}

/*
Verifies the caller's bearer credential and puts their user id on the
request context. No round-trip to the identity provider happens here; the
credential is a signed session token we can check locally.
*/
func needsAuth(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		credential, ok := bearerCredential(c.Req)
		if !ok {
			return c.ErrorResponse(http.StatusUnauthorized)
		}

		userID, err := c.Identity.ResolveCallerID(c, credential)
		if err != nil {
			if errors.Is(err, identity.ErrUnauthorized) {
				return c.ErrorResponse(http.StatusUnauthorized)
			}
			return c.ErrorResponse(http.StatusInternalServerError, err)
		}
		c.CurrentUserID = userID

		return h(c)
	}
}

func bearerCredential(req *http.Request) (string, bool) {
	header := req.Header.Get("Authorization")
	credential, found := strings.CutPrefix(header, "Bearer ")
	if !found || credential == "" {
		return "", false
	}
	return credential, true
}

func logContextErrors(c *RequestContext, errs ...error) {
	for _, err := range errs {
		c.Logger.Error().Timestamp().Stack().Str("Requested", c.FullUrl()).Err(err).Msg("error occurred during request")
	}
}

func logContextErrorsMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		res := h(c)
		logContextErrors(c, res.Errors...)
		return res
	}
}
