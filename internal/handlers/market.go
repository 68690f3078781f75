package handlers

import (
	"errors"
	"net/http"
	"strings"

	"uct-dashboard/backend-go/internal/services"
)

var errNotConfigured = errors.New("service not configured")

func (a *API) Snapshot(w http.ResponseWriter, r *http.Request) {
	if a.snapshot == nil {
		writeUnavailable(w, errNotConfigured)
		return
	}
	ctx, cancel := timeboxed(r, a.timeout)
	defer cancel()

	snap, err := a.snapshot.Get(ctx)
	if err != nil {
		a.log.WithComponent("handlers").WithError(err).Warn("snapshot failed")
		writeUnavailable(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (a *API) SnapshotTicker(w http.ResponseWriter, r *http.Request) {
	if a.snapshot == nil {
		writeUnavailable(w, errNotConfigured)
		return
	}
	sym := strings.TrimSpace(r.PathValue("ticker"))
	if sym == "" {
		writeDetail(w, http.StatusBadRequest, "ticker required")
		return
	}
	ctx, cancel := timeboxed(r, a.timeout)
	defer cancel()
	writeJSON(w, http.StatusOK, a.snapshot.Ticker(ctx, sym))
}

func (a *API) Movers(w http.ResponseWriter, r *http.Request) {
	if a.movers == nil {
		writeJSON(w, http.StatusOK, services.EmptyMovers())
		return
	}
	ctx, cancel := timeboxed(r, a.timeout)
	defer cancel()
	writeRaw(w, http.StatusOK, a.movers.Get(ctx))
}
