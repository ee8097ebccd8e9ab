// Package site serves the embedded recipe browser client.
package site

import (
	"context"
	"net/http"
)

// Router is the subset of a router Register needs. chi.Router satisfies it.
type Router interface {
	Get(pattern string, h http.HandlerFunc)
}

// Register serves the client at / and its assets under /static/.
func Register(_ context.Context, r Router) {
	if r == nil {
		panic("router is nil")
	}
	files := http.FileServer(FS())
	r.Get("/", files.ServeHTTP)
	r.Get("/static/*", http.StripPrefix("/static", files).ServeHTTP)
}
