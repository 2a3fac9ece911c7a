package main

import (
	"context"
	"log"

	"socialnexus/internal/domain/notification"
	"socialnexus/internal/domain/session"
	"socialnexus/internal/domain/social"
	"socialnexus/internal/infrastructure/firebase"
	"socialnexus/internal/infrastructure/kvstore"
	httphandlers "socialnexus/internal/interfaces/http"
	"socialnexus/internal/interfaces/scheduler"
	"socialnexus/internal/shared/auth"
	"socialnexus/internal/shared/config"
	"socialnexus/internal/shared/messages"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	Store      kvstore.Store
	closeStore func() error

	Links    *social.LinkStore
	Registry *social.Registry

	// Background work
	WorkerPool *scheduler.WorkerPool
	Sweeper    *scheduler.Sweeper

	// Auth
	JWT      *auth.JWT
	Sessions session.Provider

	// Handlers
	PanelHandler    *httphandlers.PanelHandler
	PanelAPIHandler *httphandlers.PanelAPIHandler
	LinksHandler    *httphandlers.LinksHandler
	AuthHandler     *httphandlers.AuthHandler
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	msgs := messages.Default()
	if cfg.Panel.MessagesFile != "" {
		loaded, err := messages.Load(cfg.Panel.MessagesFile)
		if err != nil {
			return nil, err
		}
		msgs = loaded
		log.Printf("Loaded panel messages from %s", cfg.Panel.MessagesFile)
	}

	var devSecret httphandlers.SecretChecker
	if cfg.DevLogin.Enabled {
		secret, err := auth.NewDevSecret(cfg.DevLogin.PasswordHash)
		if err != nil {
			return nil, err
		}
		devSecret = secret
	}

	store, closeStore, err := kvstore.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	jwt := auth.NewJWT(cfg.JWT.Secret)
	sessions := session.Chain{jwt}

	var sink notification.Sink
	if cfg.Firebase.AuthEnabled || cfg.Firebase.PushEnabled {
		app, err := firebase.NewApp(ctx, cfg.Firebase.CredentialsFile)
		if err != nil {
			closeStore()
			return nil, err
		}

		if cfg.Firebase.AuthEnabled {
			fbSessions, err := firebase.NewSessionProvider(ctx, app)
			if err != nil {
				closeStore()
				return nil, err
			}
			sessions = append(sessions, fbSessions)
			log.Println("Firebase ID token sessions enabled")
		}

		if cfg.Firebase.PushEnabled {
			messenger, err := firebase.NewMessenger(ctx, app)
			if err != nil {
				closeStore()
				return nil, err
			}
			sink = notification.NewService(messenger, msgs.PushTitle)
			log.Println("Firebase push notifications enabled")
		}
	}

	pool := scheduler.NewWorkerPool(cfg.Workers.Count, cfg.Workers.QueueSize)

	links := social.NewLinkStore(store)
	registry := social.NewRegistry(social.RegistryConfig{
		Store:     links,
		Connector: social.NewSimulatedConnector(cfg.Panel.ConnectDelay),
		Executor:  pool,
		Messages:  msgs,
		Sink:      sink,
		OnClose: func(panelID string) {
			log.Printf("Panel %s closed", panelID)
		},
	})

	panelHandler, err := httphandlers.NewPanelHandler(registry, cfg.Server.CloseRedirectURL)
	if err != nil {
		closeStore()
		return nil, err
	}

	return &Dependencies{
		Store:           store,
		closeStore:      closeStore,
		Links:           links,
		Registry:        registry,
		WorkerPool:      pool,
		Sweeper:         scheduler.NewSweeper(registry, cfg.Panel.SweepInterval, cfg.Panel.IdleTimeout),
		JWT:             jwt,
		Sessions:        sessions,
		PanelHandler:    panelHandler,
		PanelAPIHandler: httphandlers.NewPanelAPIHandler(registry),
		LinksHandler:    httphandlers.NewLinksHandler(links),
		AuthHandler:     httphandlers.NewAuthHandler(jwt, devSecret),
	}, nil
}

// Close releases the link store connections.
func (d *Dependencies) Close() {
	if d.closeStore == nil {
		return
	}
	if err := d.closeStore(); err != nil {
		log.Printf("Error closing link store: %v", err)
	}
}
