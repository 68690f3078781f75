package handlers

import (
	"crypto/subtle"
	"errors"
	"io"
	"net/http"
	"strings"

	"uct-dashboard/backend-go/internal/models"
	"uct-dashboard/backend-go/internal/services"
)

const maxPushBytes = 16 << 20

// Push replaces the wire payload. The caller must present
// "Authorization: Bearer <PUSH_SECRET>"; with no secret configured every
// request is refused.
func (a *API) Push(w http.ResponseWriter, r *http.Request) {
	if !a.authorized(r.Header.Get("Authorization")) {
		writeDetail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if a.wire == nil {
		writeUnavailable(w, errNotConfigured)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPushBytes))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "cannot read body")
		return
	}
	ctx, cancel := timeboxed(r, a.timeout)
	defer cancel()

	p, err := a.wire.Accept(ctx, body)
	if errors.Is(err, services.ErrInvalidPayload) {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		a.log.WithComponent("handlers").WithError(err).Error("push failed")
		writeUnavailable(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.PushResponse{OK: true, Date: p.Date})
}

func (a *API) authorized(header string) bool {
	if a.pushSecret == "" {
		return false
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(a.pushSecret)) == 1
}
