package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"project-tracker/internal/api"
	"project-tracker/internal/config"
	"project-tracker/internal/database"
	"project-tracker/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateAPI(); err != nil {
		log.Fatalf("config: %v", err)
	}

	lg := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer func() { _ = lg.Sync() }()

	if !cfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.DBDSN, lg)
	if err != nil {
		lg.Fatal("database", zap.Error(err))
	}
	seed := database.AdminSeed{Username: cfg.AdminUsername, Password: cfg.AdminPassword}
	if err := database.Seed(db, seed, lg); err != nil {
		lg.Fatal("seed", zap.Error(err))
	}

	srv := api.NewServer(db, api.NewTokens(cfg.JWTSecret, cfg.TokenTTL), lg)
	r := api.NewRouter(srv, cfg.CORSOrigins)

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	lg.Info("starting API", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		lg.Fatal("server error", zap.Error(err))
	}
}
