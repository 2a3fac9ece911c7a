package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"socialnexus/internal/shared/config"
	"socialnexus/internal/shared/middleware"
)

const (
	readTimeout  = 15 * time.Second
	writeTimeout = 15 * time.Second
	idleTimeout  = 60 * time.Second
)

// servers is the panel listener plus the optional :80 HTTPS redirect.
type servers struct {
	main     *http.Server
	redirect *http.Server
	tls      config.TLSConfig
}

func newServers(handler http.Handler, cfg *config.Config) *servers {
	s := &servers{
		main: newHTTPServer(net.JoinHostPort(cfg.Server.Host, cfg.Server.Port), handler),
		tls:  cfg.TLS,
	}
	if cfg.TLS.Enabled && cfg.TLS.RedirectHTTP {
		s.redirect = newHTTPServer(":80", httpsRedirect(cfg.Server.AllowedHosts))
	}
	return s
}

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

// Start serves in the background. A listener that stops for any reason other
// than Shutdown reports on errc.
func (s *servers) Start(errc chan<- error) {
	if s.redirect != nil {
		go func() {
			log.Printf("HTTP redirect server starting on %s", s.redirect.Addr)
			if err := s.redirect.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errc <- fmt.Errorf("redirect server: %w", err)
			}
		}()
	}

	go func() {
		var err error
		if s.tls.Enabled {
			log.Printf("HTTPS server starting on %s", s.main.Addr)
			err = s.main.ListenAndServeTLS(s.tls.CertPath, s.tls.KeyPath)
		} else {
			log.Printf("HTTP server starting on %s", s.main.Addr)
			err = s.main.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("panel server: %w", err)
		}
	}()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *servers) Shutdown(ctx context.Context) error {
	var errs []error
	if s.redirect != nil {
		if err := s.redirect.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("redirect server: %w", err))
		}
	}
	if err := s.main.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("panel server: %w", err))
	}
	return errors.Join(errs...)
}

// httpsRedirect sends every request to the same path over HTTPS. Hosts not
// in allowedHosts are refused so a forged Host cannot steer the redirect.
func httpsRedirect(allowedHosts []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Header.Get("X-Forwarded-Host")
		if host == "" {
			host = r.Host
		}
		if !middleware.IsHostAllowed(host, allowedHosts) {
			http.Error(w, "Invalid host", http.StatusBadRequest)
			return
		}

		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
			if strings.Contains(h, ":") {
				host = "[" + h + "]"
			}
		}
		http.Redirect(w, r, "https://"+host+r.URL.RequestURI(), http.StatusMovedPermanently)
	})
}
