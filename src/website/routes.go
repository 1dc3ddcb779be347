package website

import (
	"net/http"
	"regexp"

	"github.com/astr0n0mer/linkli/src/identity"
	"github.com/astr0n0mer/linkli/src/linkdata"
)

func NewWebsiteRoutes(store linkdata.Store, identityClient identity.Client) http.Handler {
	router := &Router{
		Store:    store,
		Identity: identityClient,
	}
	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			panicCatcherMiddleware,
			trackRequestMiddleware,
			logContextErrorsMiddleware,
		},
	}

	apiV1 := routes.Group(regexp.MustCompile(`^/api/v1`))
	authed := apiV1.WithMiddleware(needsAuth)

	// The public username routes must come before the authed {id} routes, or
	// "username" would route as a link id.
	apiV1.GET(regexp.MustCompile(`^/links/username/(?P<username>[^/]+)$`), PublicLinksForUser)
	apiV1.GET(regexp.MustCompile(`^/links/user/(?P<userId>[^/]+)$`), PublicLinksForUserId)

	authed.GET(regexp.MustCompile(`^/links$`), GetLinks)
	authed.POST(regexp.MustCompile(`^/links$`), CreateLink)
	authed.GET(regexp.MustCompile(`^/links/(?P<id>[^/]+)$`), GetLink)
	authed.PUT(regexp.MustCompile(`^/links/(?P<id>[^/]+)$`), UpdateLink)
	authed.DELETE(regexp.MustCompile(`^/links/(?P<id>[^/]+)$`), DeleteLink)
	authed.POST(regexp.MustCompile(`^/links/(?P<id>[^/]+)/move$`), MoveLink)
	authed.POST(regexp.MustCompile(`^/links/(?P<id>[^/]+)/visibility$`), ToggleLinkVisibility)

	authed.GET(regexp.MustCompile(`^/profiles/me$`), GetOwnProfile)
	authed.PUT(regexp.MustCompile(`^/profiles/me$`), UpdateOwnProfile)
	apiV1.GET(regexp.MustCompile(`^/profiles/username/(?P<username>[^/]+)$`), GetProfileByUsername)
	apiV1.GET(regexp.MustCompile(`^/profiles/(?P<userId>[^/]+)$`), GetProfileByUserId)

	routes.POST(regexp.MustCompile(`^/api/webhooks/identity$`), IdentityWebhook)

	routes.AnyMethod(regexp.MustCompile(`^`), FourOhFour)

	return router
}
