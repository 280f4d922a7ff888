package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewHandler(voteHandler *VoteHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("welcome"))
		})

		r.Route("/votes", func(r chi.Router) {
			r.Post("/", voteHandler.CastVote)
			r.Get("/", voteHandler.ListVotes)
			r.Get("/latest", voteHandler.LatestVote)
		})
	})

	return r
}
