package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/astr0n0mer/linkli/src/config"
	"github.com/astr0n0mer/linkli/src/db"
	"github.com/astr0n0mer/linkli/src/identity"
	"github.com/astr0n0mer/linkli/src/jobs"
	"github.com/astr0n0mer/linkli/src/linkdata"
	"github.com/astr0n0mer/linkli/src/logging"
	"github.com/astr0n0mer/linkli/src/website"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
)

/*
The chi-routed variant of the linkli API. It serves the same surface as the
website package over the same linkdata operations; only the routing and
middleware plumbing differ. Useful when linkli is mounted as part of a
larger chi application instead of running standalone.
*/

func init() {
	website.WebsiteCommand.AddCommand(ApiCommand)
}

var ApiCommand = &cobra.Command{
	Use:   "api",
	Short: "Run the chi-routed variant of the linkli API",
	Run: func(cmd *cobra.Command, args []string) {
		defer logging.LogPanics(nil)

		var wg sync.WaitGroup

		var store linkdata.Store
		switch config.Config.StorageMode {
		case config.StorageMemory:
			logging.Warn().Msg("Using the in-memory store; all data is lost on restart")
			store = linkdata.NewMemStore()
		default:
			store = linkdata.NewPGStore(db.NewConnPool())
		}
		identityClient := identity.NewHTTPClient(config.Config.Identity)

		wg.Add(1)
		backgroundJobs := jobs.Jobs{
			identity.PeriodicallySweepDisplayInfoCache(identityClient),
		}

		wg.Add(1)
		server := http.Server{
			Addr:    config.Config.Addr,
			Handler: NewRouter(store, identityClient),
		}
		go func() {
			logging.Info().Str("addr", config.Config.Addr).Msg("Serving the linkli API (chi)")
			serverErr := server.ListenAndServe()
			if !errors.Is(serverErr, http.ErrServerClosed) {
				logging.Error().Err(serverErr).Msg("Server shut down unexpectedly")
			}
		}()

		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt)
		go func() {
			<-signals
			logging.Info().Msg("Shutting down the linkli API")

			const timeout = 10 * time.Second

			go func() {
				unfinished := backgroundJobs.CancelAndWait(timeout)
				if len(unfinished) > 0 {
					logging.Warn().Strs("Unfinished", unfinished).Msg("Background jobs did not finish by the deadline")
				}
				wg.Done()
			}()

			go func() {
				timeoutCtx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()
				err := server.Shutdown(timeoutCtx)
				if err != nil {
					logging.Warn().Err(err).Msg("Server did not shut down gracefully")
				}
				wg.Done()
			}()

			<-signals
			os.Exit(1)
		}()

		wg.Wait()
	},
}

type Server struct {
	store    linkdata.Store
	identity identity.Client
}

func NewRouter(store linkdata.Store, identityClient identity.Client) http.Handler {
	s := &Server{
		store:    store,
		identity: identityClient,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/links/username/{username}", s.publicLinksForUser)
		r.Get("/links/user/{userId}", s.publicLinksForUserId)
		r.Get("/profiles/username/{username}", s.profileByUsername)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/links", s.listLinks)
			r.Post("/links", s.createLink)
			r.Get("/links/{id}", s.getLink)
			r.Put("/links/{id}", s.updateLink)
			r.Delete("/links/{id}", s.deleteLink)
			r.Post("/links/{id}/move", s.moveLink)
			r.Post("/links/{id}/visibility", s.toggleLinkVisibility)
			r.Get("/profiles/me", s.getOwnProfile)
			r.Put("/profiles/me", s.updateOwnProfile)
		})

		r.Get("/profiles/{userId}", s.profileByUserId)
	})

	r.Post("/api/webhooks/identity", s.identityWebhook)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(wrapped, req)
		logging.Info().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Int("status", wrapped.Status()).
			Dur("duration", time.Since(start)).
			Msg("served request")
	})
}

type contextKey int

const userIDKey contextKey = iota

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		credential, ok := bearerCredential(req)
		if !ok {
			writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
			return
		}

		userID, err := s.identity.ResolveCallerID(req.Context(), credential)
		if err != nil {
			if errors.Is(err, identity.ErrUnauthorized) {
				writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
			} else {
				logging.Error().Err(err).Msg("failed to resolve caller identity")
				writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			}
			return
		}

		next.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), userIDKey, userID)))
	})
}

func bearerCredential(req *http.Request) (string, bool) {
	const prefix = "Bearer "
	header := req.Header.Get("Authorization")
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return "", false
	}
	return header[len(prefix):], true
}

func callerID(req *http.Request) string {
	userID, _ := req.Context().Value(userIDKey).(string)
	return userID
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(struct {
		Data any `json:"data"`
	}{Data: data})
	if err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: message})
	if err != nil {
		logging.Error().Err(err).Msg("failed to encode error response")
	}
}
