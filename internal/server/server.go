// Package server exposes the pipeline over HTTP. It is thin request glue:
// all caching and synthesis behavior lives in the pipeline.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"voxpipe/internal/pipeline"
)

// Runner runs one prompt-to-speech cycle. Satisfied by *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, prompt string) (pipeline.Result, error)
}

// Handler returns the HTTP routes. The runner and its caches are shared by
// all in-flight requests; each request is an independent pipeline run.
func Handler(r Runner) http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)

	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.Post("/generate", func(w http.ResponseWriter, req *http.Request) {
		if err := req.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "malformed form body", "")
			return
		}
		prompt := strings.TrimSpace(req.PostFormValue("prompt"))
		if prompt == "" {
			writeError(w, http.StatusBadRequest, "prompt is required", "")
			return
		}

		res, err := r.Run(req.Context(), prompt)
		if err != nil {
			slog.Error("pipeline run failed", "err", err)
			// A synthesis-stage failure still carries the generated
			// text; surface it rather than dropping it.
			writeError(w, http.StatusBadGateway, err.Error(), res.Text)
			return
		}

		w.Header().Set("Content-Type", "audio/mpeg")
		if len(res.Audio.Audio) > 0 {
			w.Write(res.Audio.Audio)
			return
		}
		http.ServeFile(w, req, res.Audio.Path)
	})

	return mux
}

func writeError(w http.ResponseWriter, status int, msg, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]string{"error": msg}
	if text != "" {
		body["text"] = text
	}
	json.NewEncoder(w).Encode(body)
}
