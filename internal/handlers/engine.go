package handlers

import (
	"net/http"
)

func (a *API) withEngine(w http.ResponseWriter, r *http.Request, fn func(*http.Request) any) {
	if a.engine == nil {
		writeUnavailable(w, errNotConfigured)
		return
	}
	ctx, cancel := timeboxed(r, a.timeout)
	defer cancel()
	writeJSON(w, http.StatusOK, fn(r.WithContext(ctx)))
}

func (a *API) Breadth(w http.ResponseWriter, r *http.Request) {
	a.withEngine(w, r, func(r *http.Request) any { return a.engine.Breadth(r.Context()) })
}

// Themes reads ?period=1W|1M|3M; anything else is served as 1W.
func (a *API) Themes(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	a.withEngine(w, r, func(r *http.Request) any { return a.engine.Themes(r.Context(), period) })
}

func (a *API) Leadership(w http.ResponseWriter, r *http.Request) {
	a.withEngine(w, r, func(r *http.Request) any { return a.engine.Leadership(r.Context()) })
}

// Rundown reads ?type=post_market for the evening edition.
func (a *API) Rundown(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("type")
	a.withEngine(w, r, func(r *http.Request) any { return a.engine.Rundown(r.Context(), kind) })
}

func (a *API) Earnings(w http.ResponseWriter, r *http.Request) {
	a.withEngine(w, r, func(r *http.Request) any { return a.engine.Earnings(r.Context()) })
}

func (a *API) News(w http.ResponseWriter, r *http.Request) {
	a.withEngine(w, r, func(r *http.Request) any { return a.engine.News(r.Context()) })
}

func (a *API) Screener(w http.ResponseWriter, r *http.Request) {
	a.withEngine(w, r, func(r *http.Request) any { return a.engine.Screener(r.Context()) })
}
