package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers history ingest and read routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/history", func(r chi.Router) {
		r.Get("/tickers", h.HandleGetTickers)

		r.Route("/prices", func(r chi.Router) {
			r.Post("/", h.HandleUpsertPrices)
			r.Get("/{ticker}", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGetPrices(w, r, chi.URLParam(r, "ticker"))
			})
		})
		r.Post("/reports", h.HandleUpsertReports)
	})
}
