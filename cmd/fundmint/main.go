package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/fundmint-lab/fundmint/internal/api"
	"github.com/fundmint-lab/fundmint/internal/models"
	"github.com/fundmint-lab/fundmint/internal/server"
	"github.com/fundmint-lab/fundmint/internal/services"
	"github.com/fundmint-lab/fundmint/internal/utils"
	_ "github.com/joho/godotenv/autoload" // Automatically load .env file if present
	"github.com/sirupsen/logrus"
)

func main() {
	if os.Getenv("LOG_FORMAT") == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logrus.SetLevel(level)
	}

	port := 8080
	if raw := os.Getenv("PORT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			logrus.WithError(err).Fatal("invalid PORT")
		}
		port = parsed
	}

	// Postgres when a DSN is configured, local SQLite otherwise.
	var dbService services.DBService
	var err error
	if dsn := os.Getenv("POSTGRES_URL"); dsn != "" {
		dbService, err = services.NewPostgresDBService(dsn)
	} else {
		dbPath := os.Getenv("SQLITE_PATH")
		if dbPath == "" {
			dbPath = "data/fundmint.db"
		}
		dbService, err = services.NewSqliteDBService(dbPath)
	}
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize database")
	}
	defer dbService.Close()

	signers := services.NewSignerRegistry()
	registerSigner(signers, services.RoleCampaignCreator, "CAMPAIGN_CREATOR_PRIVATE_KEY")
	registerSigner(signers, services.RoleEditionMinter, "EDITION_MINTER_PRIVATE_KEY")

	notifier := buildNotifier()

	chainService, _, campaignService, purchaseService, reconcileService, ownershipService, hookService := server.InitializeServices(
		dbService.GetDB(), signers, notifier, os.Getenv("RELAYER_ADDRESS"))
	server.InitializeHooks(notifier, hookService)

	if err := seedChains(chainService); err != nil {
		logrus.WithError(err).Fatal("failed to seed chain registry")
	}

	var authenticator *utils.JwtAuthenticator
	if jwksUri := os.Getenv("JWKS_URI"); jwksUri != "" {
		authenticator = utils.NewJwtAuthenticator(jwksUri)
	}

	apiServer := api.NewAPIServer(campaignService, purchaseService, reconcileService, ownershipService, chainService, authenticator)
	startedPort, err := apiServer.Start(port)
	if err != nil {
		logrus.WithError(err).Fatal("failed to start API server")
	}
	logrus.WithField("port", startedPort).Info("API server started")

	// Set up graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logrus.Info("shutting down server")
	if err := apiServer.Shutdown(); err != nil {
		logrus.WithError(err).Error("error shutting down API server")
	}
	logrus.Info("server shut down successfully")
}

func registerSigner(registry *services.SignerRegistry, role services.SignerRole, envKey string) {
	hexKey := os.Getenv(envKey)
	if hexKey == "" {
		logrus.WithField("role", role).Warn("no private key configured, writes for this role will fail")
		return
	}
	signer, err := services.NewSignerFromHex(role, hexKey)
	if err != nil {
		logrus.WithError(err).WithField("role", role).Fatal("failed to parse private key")
	}
	registry.Register(signer)
	logrus.WithFields(logrus.Fields{"role": role, "address": signer.Address().Hex()}).Info("signer registered")
}

func buildNotifier() services.Notifier {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		logrus.Warn("no SendGrid key configured, notifications are dropped")
		return services.NewNoopNotifier()
	}
	return services.NewSendgridNotifier(
		apiKey,
		os.Getenv("SENDGRID_FROM_NAME"),
		os.Getenv("SENDGRID_FROM_EMAIL"),
		map[services.TemplateKind]string{
			services.TemplateBuyerReceipt:  os.Getenv("SENDGRID_TEMPLATE_BUYER_RECEIPT"),
			services.TemplateCreatorNotice: os.Getenv("SENDGRID_TEMPLATE_CREATOR_NOTICE"),
			services.TemplateCampaignLive:  os.Getenv("SENDGRID_TEMPLATE_CAMPAIGN_LIVE"),
		},
	)
}

// seedChains loads the chain and binding registry from CHAINS_FILE. Existing
// rows are left untouched.
func seedChains(chainService services.ChainService) error {
	path := os.Getenv("CHAINS_FILE")
	if path == "" {
		logrus.Warn("no CHAINS_FILE configured, chain registry not seeded")
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var config struct {
		Chains   []models.Chain           `json:"chains"`
		Bindings []models.ContractBinding `json:"bindings"`
	}
	if err := json.Unmarshal(raw, &config); err != nil {
		return err
	}

	return chainService.Seed(config.Chains, config.Bindings)
}
