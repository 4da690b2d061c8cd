package api

import (
	"fmt"
	"net"

	"github.com/fundmint-lab/fundmint/internal/api/middleware"
	"github.com/fundmint-lab/fundmint/internal/services"
	"github.com/fundmint-lab/fundmint/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
)

type APIServer struct {
	app       *fiber.App
	campaigns services.CampaignService
	purchases services.PurchaseService
	reconcile services.ReconcileService
	ownership services.OwnershipService
	chains    services.ChainService
	auth      *utils.JwtAuthenticator
	port      int
}

func NewAPIServer(campaigns services.CampaignService, purchases services.PurchaseService, reconcile services.ReconcileService, ownership services.OwnershipService, chains services.ChainService, auth *utils.JwtAuthenticator) *APIServer {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Add middleware
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	server := &APIServer{
		app:       app,
		campaigns: campaigns,
		purchases: purchases,
		reconcile: reconcile,
		ownership: ownership,
		chains:    chains,
		auth:      auth,
	}
	server.setupRoutes()
	return server
}

func (s *APIServer) setupRoutes() {
	// Public read surface
	s.app.Get("/api/chains", s.handleListChains)
	s.app.Get("/api/submissions", s.handleListSubmissions)
	s.app.Get("/api/submissions/:id", s.handleGetSubmission)
	s.app.Get("/api/wallets/:address/tokens", s.handleWalletTokens)
	s.app.Get("/api/campaigns/:id/events", s.handleListEvents)

	// Purchase flow
	s.app.Post("/api/submissions", s.handleCreateSubmission)
	s.app.Post("/api/purchases", s.handlePurchase)
	s.app.Post("/api/purchases/reconcile", s.handleReconcile)
	s.app.Patch("/api/purchases/:tx_hash", s.handleAnnotatePurchase)

	// Admin surface, gated on the provisioner role
	admin := s.app.Group("/api/admin", middleware.AuthMiddleware(middleware.AuthConfig{
		JWTAuthenticator: s.auth,
		RequiredRole:     "admin",
	}))
	admin.Post("/submissions/:id/provision", s.handleProvision)
	admin.Post("/campaigns/:id/resync", s.handleResync)

	// Health check
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
}

// Start starts the server on the given port, or a random available port when
// port is zero.
func (s *APIServer) Start(port int) (int, error) {
	if port == 0 {
		listener, err := net.Listen("tcp", ":0")
		if err != nil {
			return 0, fmt.Errorf("failed to find available port: %w", err)
		}
		port = listener.Addr().(*net.TCPAddr).Port
		listener.Close()
	}
	s.port = port

	go func() {
		if err := s.app.Listen(fmt.Sprintf(":%d", port)); err != nil {
			logrus.WithError(err).Error("api server stopped")
		}
	}()

	return port, nil
}

func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}

func (s *APIServer) GetPort() int {
	return s.port
}
