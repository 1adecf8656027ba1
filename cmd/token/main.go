package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/auth"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/config"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Mints a service token for /api/v1 callers, signed with
// ORDERNOW_AUTH_SERVICE_TOKEN_SECRET. The token is the only thing written to stdout.
func main() {
	var (
		service string
		ttl     time.Duration
	)
	flag.StringVar(&service, "service", "storefront", "Name of the calling service (token subject)")
	flag.DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	log, err := logger.New(&logger.Config{Level: "info", Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	token, err := auth.NewServiceTokenService(cfg.Auth).IssueToken(service, ttl)
	if err != nil {
		log.Fatal("Failed to issue service token", zap.Error(err), zap.String("service", service))
	}
	log.Info("Service token issued",
		zap.String("service", service),
		zap.Duration("ttl", ttl),
		zap.String("issuer", cfg.Auth.Issuer),
	)
	fmt.Println(token)
}
