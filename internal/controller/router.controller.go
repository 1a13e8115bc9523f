package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		r.Get("/stats", c.getStats)
		r.Route("/ws", func(r chi.Router) {
			r.Get("/join", c.joinRoom)
		})
		r.Route("/videos", func(r chi.Router) {
			r.Post("/", c.uploadVideo)
			r.Route("/{video-id}", func(r chi.Router) {
				r.Delete("/", c.deleteVideo)
				r.Get("/stream", c.streamVideo)
			})
		})
		r.Post("/subtitles", c.uploadSubtitles)
	})

	return r
}
