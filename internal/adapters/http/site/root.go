// Package site serves the embedded entry and leaderboard pages.
package site

import (
	"context"
	"net/http"
)

// Register attaches the embedded pages to mux:
//
//	GET /                  -> result entry and event management
//	GET /leaderboard       -> live leaderboard display
//	GET /static/...        -> shared assets
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	files := http.FileServer(FS())
	mux.Handle("GET /static/", http.StripPrefix("/static", files))
	mux.HandleFunc("GET /leaderboard", servePage("leaderboard.html"))
	mux.HandleFunc("GET /{$}", servePage("index.html"))
}

func servePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, staticFS, "static/"+name)
	}
}
