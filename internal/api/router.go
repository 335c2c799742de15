package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/avdmeer/Post-Ledger-Backend/internal/api/handlers"
	custommiddleware "github.com/avdmeer/Post-Ledger-Backend/internal/api/middleware"
	"github.com/avdmeer/Post-Ledger-Backend/internal/config"
	"github.com/avdmeer/Post-Ledger-Backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	agentService *service.AgentService,
	postService *service.PostService,
	chainService *service.ChainService,
	peerService *service.PeerService,
	developerService *service.DeveloperService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	tokenAuth := custommiddleware.TokenAuth(agentService)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService, chainService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
			r.Get("/checksum", systemHandler.CheckSum)
			r.Post("/chain-audit", systemHandler.ChainAudit)
		})

		r.Route("/agents", func(r chi.Router) {
			agentHandler := handlers.NewAgentHandler(agentService, chainService, postService)
			r.Post("/", agentHandler.RegisterAgent)
			r.Get("/", agentHandler.Agents)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", agentHandler.GetAgent)
				r.Get("/records", agentHandler.AgentRecords)
				r.Get("/posts", agentHandler.AgentPosts)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			postHandler := handlers.NewPostHandler(postService)
			r.Post("/hash", postHandler.HashPost)

			r.Route("/{address}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateAddressMiddleware)
				r.Get("/", postHandler.GetPost)
			})

			// Routes below act as the calling agent and need a bearer token.
			r.Group(func(r chi.Router) {
				r.Use(tokenAuth)
				r.Post("/", postHandler.CreatePost)
				r.Get("/mine", postHandler.MyPosts)
				r.Get("/mine/committed", postHandler.MyPostsAsCommitted)
			})
		})

		// Peer namespace only exists when a peer is configured.
		if peerService != nil {
			r.Route("/peer", func(r chi.Router) {
				peerHandler := handlers.NewPeerHandler(peerService)
				r.Post("/import", peerHandler.ImportFromPeer)
			})
		}

		r.Route("/developer", func(r chi.Router) {
			developerHandler := handlers.NewDeveloperHandler(developerService)
			r.Get("/logs", developerHandler.GetLogs)
			r.Delete("/logs", developerHandler.ClearLogs)
		})
	})

	return r
}
