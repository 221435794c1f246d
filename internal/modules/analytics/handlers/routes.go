package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers analytics and portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/valuation/{ticker}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetValuation(w, r, chi.URLParam(r, "ticker"))
		})
		r.Get("/fundamentals/{ticker}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetFundamentals(w, r, chi.URLParam(r, "ticker"))
		})
		r.Get("/ttm/{ticker}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetTTM(w, r, chi.URLParam(r, "ticker"))
		})
		r.Get("/growth/{ticker}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetGrowth(w, r, chi.URLParam(r, "ticker"))
		})
		r.Get("/fx/convert", h.HandleConvert)
		r.Get("/fx/currencies", h.HandleGetCurrencies)
	})

	r.Route("/portfolios", func(r chi.Router) {
		r.Get("/", h.HandleListPortfolios)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/history", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGetPortfolioHistory(w, r, chi.URLParam(r, "name"))
			})
			r.Get("/kpis", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGetPortfolioKPIs(w, r, chi.URLParam(r, "name"))
			})
			r.Get("/snapshots", func(w http.ResponseWriter, r *http.Request) {
				h.HandleListSnapshots(w, r, chi.URLParam(r, "name"))
			})
			r.Get("/snapshots/latest", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGetLatestSnapshot(w, r, chi.URLParam(r, "name"))
			})
		})
	})
}
