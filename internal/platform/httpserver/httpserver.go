package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. Every endpoint takes a small JSON body and
// answers from memory or a single store round trip, so the read and write
// deadlines are tight; slow-client header reads are cut off early.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
}
