package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"uct-dashboard/backend-go/internal/models"
	"uct-dashboard/backend-go/internal/services"
)

const maxTradeBytes = 64 << 10

func (a *API) Traders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.traders)
}

func (a *API) ListTrades(w http.ResponseWriter, r *http.Request) {
	if a.trades == nil {
		writeUnavailable(w, errNotConfigured)
		return
	}
	trades, err := a.trades.List(r.Context())
	if err != nil {
		a.log.WithComponent("handlers").WithError(err).Warn("list trades failed")
		writeUnavailable(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trades)
}

func (a *API) AddTrade(w http.ResponseWriter, r *http.Request) {
	if a.trades == nil {
		writeUnavailable(w, errNotConfigured)
		return
	}
	var in models.TradeInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTradeBytes))
	if err := dec.Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid trade body")
		return
	}

	t, err := a.trades.Add(r.Context(), in)
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		writeDetail(w, http.StatusUnprocessableEntity, ve.Error())
		return
	}
	if err != nil {
		a.log.WithComponent("handlers").WithError(err).Error("add trade failed")
		writeUnavailable(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}
