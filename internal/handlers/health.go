package handlers

import (
	"net/http"

	"uct-dashboard/backend-go/internal/models"
)

func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{Status: "ok"})
}
