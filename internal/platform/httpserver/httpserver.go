package httpserver

import (
	"net/http"
	"time"

	"nhc/internal/platform/config"
)

// New builds the HTTP server. The write timeout leaves handlers their full
// request timeout plus room to write the response.
func New(cfg config.Server, handler http.Handler) *http.Server {
	write := 35 * time.Second
	if cfg.RequestTimeout > 0 {
		write = cfg.RequestTimeout + 5*time.Second
	}
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      write,
		IdleTimeout:       60 * time.Second,
	}
}
