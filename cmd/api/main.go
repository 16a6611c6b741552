// server/cmd/api/main.go
package main

import (
	"log"

	"courier-track-api-server/config"
	"courier-track-api-server/internal/api/routes"
	"courier-track-api-server/internal/assignment"
	"courier-track-api-server/internal/auth"
	"courier-track-api-server/internal/database"
	"courier-track-api-server/internal/delivery"
	"courier-track-api-server/internal/logger"
	"courier-track-api-server/internal/notify"
	"courier-track-api-server/internal/payment"
	"courier-track-api-server/internal/s3"
	"courier-track-api-server/internal/socket"
	"courier-track-api-server/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load .env (optional) and configuration
	_ = godotenv.Load()
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	zlog, err := logger.New()
	if err != nil {
		log.Fatalf("Could not initialize logger: %v", err)
	}
	defer zlog.Sync()

	// 2. Connect MongoDB and seed the default admin
	db, err := database.Connect(cfg.Mongo)
	if err != nil {
		zlog.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	if err := database.SeedAdmin(db); err != nil {
		zlog.Fatal("failed to seed admin user", zap.Error(err))
	}

	// 3. Collaborators
	issuer := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Expiration)
	hub := socket.NewHub(zlog)
	mailer := notify.NewMailer(cfg.SMTP, zlog)
	gateway := payment.NewGateway(cfg.Razorpay)

	uploader, err := s3.NewUploader(cfg.S3)
	if err != nil {
		zlog.Fatal("failed to initialize S3 uploader", zap.Error(err))
	}

	// 4. Assignment and lifecycle services
	deliveryStore := store.NewMongoDeliveryStore(db)
	partnerStore := store.NewMongoPartnerStore(db)

	assigner := assignment.NewAssigner(deliveryStore, partnerStore, cfg.Assignment.BaseEarning, zlog)
	assignments := assignment.NewService(assigner, deliveryStore, deliveryStore, cfg.Assignment.BatchSize, zlog)
	lifecycle := delivery.NewService(deliveryStore, partnerStore, zlog)

	assignments.Start(cfg.Assignment.IntervalMinutes)
	defer assignments.Stop()

	// 5. Wire everything into the router and start serving
	router := routes.SetupRouter(db, issuer, assigner, assignments, lifecycle, hub, mailer, gateway, uploader, zlog)

	zlog.Info("starting API server", zap.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		zlog.Fatal("failed to run server", zap.Error(err))
	}
}
