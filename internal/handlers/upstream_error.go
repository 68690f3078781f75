package handlers

import (
	"context"
	"errors"
	"net"
	"net/http"

	"uct-dashboard/backend-go/internal/services"
)

// writeUnavailable reports a service failure as 503 with a detail message.
// Upstream status, configuration and timeout failures get a readable detail;
// the status code does not change.
func writeUnavailable(w http.ResponseWriter, err error) {
	var upErr *services.UpstreamError
	switch {
	case errors.As(err, &upErr):
		if upErr.Status == http.StatusTooManyRequests {
			w.Header().Set("Retry-After", "60")
		}
		writeDetail(w, http.StatusServiceUnavailable, upErr.Error())
		return
	case errors.Is(err, services.ErrMissingAPIKey):
		writeDetail(w, http.StatusServiceUnavailable, err.Error())
		return
	case errors.Is(err, context.DeadlineExceeded):
		writeDetail(w, http.StatusServiceUnavailable, "upstream_timeout")
		return
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		writeDetail(w, http.StatusServiceUnavailable, "upstream_timeout")
		return
	}
	writeDetail(w, http.StatusServiceUnavailable, err.Error())
}
