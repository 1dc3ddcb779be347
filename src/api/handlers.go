package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/astr0n0mer/linkli/src/config"
	"github.com/astr0n0mer/linkli/src/db"
	"github.com/astr0n0mer/linkli/src/identity"
	"github.com/astr0n0mer/linkli/src/linkdata"
	"github.com/astr0n0mer/linkli/src/logging"
	"github.com/astr0n0mer/linkli/src/models"
	"github.com/astr0n0mer/linkli/src/siteurl"
	"github.com/astr0n0mer/linkli/src/website"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 * 1024 * 1024

// Maps a failed operation to a response. Mirrors the website variant:
// existence beats ownership, validation messages are surfaced verbatim.
func domainError(w http.ResponseWriter, err error) {
	var verr *linkdata.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, db.NotFound) || errors.Is(err, identity.ErrUserNotFound):
		writeError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	case errors.Is(err, linkdata.ErrForbidden):
		writeError(w, http.StatusForbidden, http.StatusText(http.StatusForbidden))
	default:
		logging.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func parseJson(req *http.Request, dest any) error {
	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dest)
}

func (s *Server) listLinks(w http.ResponseWriter, req *http.Request) {
	list, err := linkdata.FetchLinks(req.Context(), s.store, callerID(req), true)
	if err != nil {
		domainError(w, err)
		return
	}
	writeData(w, http.StatusOK, website.LinksToJson(list))
}

func (s *Server) getLink(w http.ResponseWriter, req *http.Request) {
	link, err := linkdata.FetchLink(req.Context(), s.store, chi.URLParam(req, "id"), callerID(req))
	if err != nil {
		domainError(w, err)
		return
	}
	writeData(w, http.StatusOK, website.LinkToJson(link))
}

func (s *Server) createLink(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Title      string `json:"title"`
		URL        string `json:"url"`
		Slug       string `json:"slug"`
		Category   string `json:"category"`
		Visibility string `json:"visibility"`
	}
	if err := parseJson(req, &body); err != nil {
		writeError(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
		return
	}

	link, err := linkdata.CreateLink(req.Context(), s.store, callerID(req), linkdata.LinkInput{
		Title:      body.Title,
		URL:        body.URL,
		Slug:       body.Slug,
		Category:   body.Category,
		Visibility: models.LinkVisibility(body.Visibility),
	})
	if err != nil {
		domainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, website.LinkToJson(link))
}

func (s *Server) updateLink(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Title      *string `json:"title"`
		URL        *string `json:"url"`
		Slug       *string `json:"slug"`
		Category   *string `json:"category"`
		Visibility *string `json:"visibility"`
		Order      *int    `json:"order"`
	}
	if err := parseJson(req, &body); err != nil {
		writeError(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
		return
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

	link, err := linkdata.UpdateLink(req.Context(), s.store, chi.URLParam(req, "id"), callerID(req), patch)
	if err != nil {
		domainError(w, err)
		return
	}
	writeData(w, http.StatusOK, website.LinkToJson(link))
}

func (s *Server) deleteLink(w http.ResponseWriter, req *http.Request) {
	err := linkdata.DeleteLink(req.Context(), s.store, chi.URLParam(req, "id"), callerID(req))
	if err != nil {
		domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) moveLink(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Direction string `json:"direction"`
	}
	if err := parseJson(req, &body); err != nil {
		writeError(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
		return
	}

	list, err := linkdata.MoveLink(req.Context(), s.store, chi.URLParam(req, "id"), callerID(req), linkdata.MoveDirection(body.Direction))
	if err != nil {
		if !website.ErrorIsPersistence(err) {
			domainError(w, err)
			return
		}

		// The rank swap may have half-applied. Hand the client a fresh list
		// alongside the error so it can resynchronize.
		logging.Error().Err(err).Msg("request failed")
		fresh, ferr := linkdata.FetchLinks(req.Context(), s.store, callerID(req), true)
		if ferr != nil {
			writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		encodeErr := json.NewEncoder(w).Encode(struct {
			Error string             `json:"error"`
			Data  []website.LinkJson `json:"data"`
		}{
			Error: http.StatusText(http.StatusInternalServerError),
			Data:  website.LinksToJson(fresh),
		})
		if encodeErr != nil {
			logging.Error().Err(encodeErr).Msg("failed to encode response")
		}
		return
	}
	writeData(w, http.StatusOK, website.LinksToJson(list))
}

func (s *Server) toggleLinkVisibility(w http.ResponseWriter, req *http.Request) {
	link, err := linkdata.ToggleVisibility(req.Context(), s.store, chi.URLParam(req, "id"), callerID(req))
	if err != nil {
		domainError(w, err)
		return
	}
	writeData(w, http.StatusOK, website.LinkToJson(link))
}

func (s *Server) publicLinksForUser(w http.ResponseWriter, req *http.Request) {
	user, err := s.identity.UserByUsername(req.Context(), chi.URLParam(req, "username"))
	if err != nil {
		domainError(w, err)
		return
	}

	list, err := linkdata.FetchLinks(req.Context(), s.store, user.ID, false)
	if err != nil {
		domainError(w, err)
		return
	}

	result := make([]website.PublicLinkJson, 0, len(list))
	for _, link := range list {
		result = append(result, website.LinkToPublicJson(user.Username, link))
	}
	writeData(w, http.StatusOK, result)
}

func (s *Server) publicLinksForUserId(w http.ResponseWriter, req *http.Request) {
	userID := chi.URLParam(req, "userId")

	list, err := linkdata.FetchLinks(req.Context(), s.store, userID, false)
	if err != nil {
		domainError(w, err)
		return
	}

	username := ""
	user, identityErr := s.identity.DisplayInfo(req.Context(), userID)
	switch {
	case identityErr == nil:
		username = user.Username
	case errors.Is(identityErr, identity.ErrUserNotFound):
		if len(list) == 0 {
			writeError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
			return
		}
	default:
		logging.Warn().Err(identityErr).Msg("failed to resolve username for public links")
	}

	result := make([]website.PublicLinkJson, 0, len(list))
	for _, link := range list {
		result = append(result, website.LinkToPublicJson(username, link))
	}
	writeData(w, http.StatusOK, result)
}

func (s *Server) profileJson(ctx context.Context, profile *models.Profile) website.ProfileJson {
	result := website.ProfileJson{
		UserID: profile.UserID,
		Bio:    profile.Bio,
	}

	user, err := s.identity.DisplayInfo(ctx, profile.UserID)
	if err != nil {
		logging.Warn().Err(err).Msg("failed to enrich profile with identity info")
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

func (s *Server) getOwnProfile(w http.ResponseWriter, req *http.Request) {
	profile, err := linkdata.FetchProfile(req.Context(), s.store, callerID(req))
	if err != nil {
		domainError(w, err)
		return
	}
	writeData(w, http.StatusOK, s.profileJson(req.Context(), profile))
}

func (s *Server) updateOwnProfile(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Bio string `json:"bio"`
	}
	if err := parseJson(req, &body); err != nil {
		writeError(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
		return
	}

	profile, err := linkdata.UpdateBio(req.Context(), s.store, callerID(req), body.Bio)
	if err != nil {
		domainError(w, err)
		return
	}
	writeData(w, http.StatusOK, s.profileJson(req.Context(), profile))
}

func (s *Server) profileByUserId(w http.ResponseWriter, req *http.Request) {
	userID := chi.URLParam(req, "userId")

	profile, err := s.store.FindProfile(req.Context(), userID)
	if errors.Is(err, db.NotFound) {
		_, identityErr := s.identity.DisplayInfo(req.Context(), userID)
		if errors.Is(identityErr, identity.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
			return
		}
		profile = &models.Profile{UserID: userID}
	} else if err != nil {
		domainError(w, err)
		return
	}

	writeData(w, http.StatusOK, s.profileJson(req.Context(), profile))
}

func (s *Server) profileByUsername(w http.ResponseWriter, req *http.Request) {
	user, err := s.identity.UserByUsername(req.Context(), chi.URLParam(req, "username"))
	if err != nil {
		domainError(w, err)
		return
	}

	profile, err := s.store.FindProfile(req.Context(), user.ID)
	if errors.Is(err, db.NotFound) {
		profile = &models.Profile{UserID: user.ID}
	} else if err != nil {
		domainError(w, err)
		return
	}

	writeData(w, http.StatusOK, website.ProfileJson{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		AvatarUrl:   user.AvatarUrl,
		Bio:         profile.Bio,
		ProfileUrl:  siteurl.BuildUserProfile(user.Username),
	})
}

func (s *Server) identityWebhook(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
		return
	}

	if !verifyWebhookSignature(body, req.Header.Get("X-Webhook-Signature"), config.Config.Identity.WebhookSecret) {
		logging.Warn().Msg("identity webhook with a bad signature - misconfiguration or forgery?")
		writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	var event struct {
		Type string `json:"type"`
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &event); err != nil || event.Data.ID == "" {
		writeError(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
		return
	}

	switch event.Type {
	case "user.created":
		err = linkdata.EnsureProfile(req.Context(), s.store, event.Data.ID)
	case "user.deleted":
		err = linkdata.DeleteUserData(req.Context(), s.store, event.Data.ID)
	default:
		logging.Debug().Str("type", event.Type).Msg("ignoring identity event")
	}
	if err != nil {
		domainError(w, err)
		return
	}

	writeData(w, http.StatusOK, "ok")
}

func verifyWebhookSignature(body []byte, signatureHex string, secret string) bool {
	if secret == "" || signatureHex == "" {
		return false
	}

	signature, err := hex.DecodeString(signatureHex)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(signature, mac.Sum(nil))
}
