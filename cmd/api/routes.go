package main

import (
	"log"
	"net/http"

	httphandlers "socialnexus/internal/interfaces/http"
	"socialnexus/internal/shared/config"
	"socialnexus/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Server-rendered panel
	mux.HandleFunc("/", httphandlers.HandleIndex)
	mux.HandleFunc("/panel", deps.PanelHandler.HandlePanel)
	mux.HandleFunc("/panel/tab", deps.PanelHandler.HandleSelectTab)
	mux.HandleFunc("/panel/connect", deps.PanelHandler.HandleConnect)
	mux.HandleFunc("/panel/disconnect", deps.PanelHandler.HandleDisconnect)
	mux.HandleFunc("/panel/open", deps.PanelHandler.HandleOpen)
	mux.HandleFunc("/panel/close", deps.PanelHandler.HandleClose)

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Panel JSON API (anonymous allowed)
	mux.HandleFunc("/api/social/panel", deps.PanelAPIHandler.HandlePanel)
	mux.HandleFunc("/api/social/tab", deps.PanelAPIHandler.HandleSelectTab)
	mux.HandleFunc("/api/social/connect", deps.PanelAPIHandler.HandleConnect)
	mux.HandleFunc("/api/social/disconnect", deps.PanelAPIHandler.HandleDisconnect)
	mux.HandleFunc("/api/social/open", deps.PanelAPIHandler.HandleOpen)
	mux.HandleFunc("/api/social/close", deps.PanelAPIHandler.HandleClose)

	// Auth
	if cfg.DevLogin.Enabled {
		mux.HandleFunc("/api/auth/dev-login", deps.AuthHandler.HandleDevLogin)
		log.Println("Development login enabled at /api/auth/dev-login")
	}
	mux.HandleFunc("/api/auth/logout", deps.AuthHandler.HandleLogout)

	// Protected routes
	authMiddleware := middleware.Auth(deps.Sessions)

	mux.Handle("/api/social/links", authMiddleware(http.HandlerFunc(deps.LinksHandler.HandleLinks)))
	mux.Handle("/api/social/links/{provider}", authMiddleware(http.HandlerFunc(deps.LinksHandler.HandleLinkByProvider)))

	// Apply global middleware
	// Session runs outermost so Logging can attribute requests to a user
	handler := middleware.Logging(middleware.CORS(cfg.Server.AllowedHosts)(mux))
	handler = middleware.Session(deps.Sessions)(handler)

	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(handler)
	}

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Println("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}
