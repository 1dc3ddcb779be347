package website

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/astr0n0mer/linkli/src/config"
	"github.com/astr0n0mer/linkli/src/linkdata"
)

const webhookSignatureHeader = "X-Webhook-Signature"

type identityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

/*
Receives account lifecycle events from the identity provider. The provider
signs the raw request body with HMAC-SHA256 over a shared secret; anything
with a bad or missing signature is rejected before we even parse it.

user.created provisions an empty profile, and user.deleted removes
everything we store for the account: the profile and all links. Event types
we don't care about are acknowledged and dropped.
*/
func IdentityWebhook(c *RequestContext) ResponseData {
	body, err := io.ReadAll(io.LimitReader(c.Req.Body, maxBodyBytes))
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest)
	}

	if !verifyWebhookSignature(body, c.Req.Header.Get(webhookSignatureHeader), config.Config.Identity.WebhookSecret) {
		c.Logger.Warn().Msg("identity webhook with a bad signature - misconfiguration or forgery?")
		return c.ErrorResponse(http.StatusUnauthorized)
	}

	var event identityEvent
	err = json.Unmarshal(body, &event)
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest)
	}
	if event.Data.ID == "" {
		return c.ErrorResponse(http.StatusBadRequest)
	}

	switch event.Type {
	case "user.created":
		err = linkdata.EnsureProfile(c, c.Store, event.Data.ID)
	case "user.deleted":
		err = linkdata.DeleteUserData(c, c.Store, event.Data.ID)
	default:
		c.Logger.Debug().Str("type", event.Type).Msg("ignoring identity event")
	}
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	return c.DataResponse(http.StatusOK, "ok")
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
