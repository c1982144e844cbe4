package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"project-tracker/internal/apiclient"
	"project-tracker/internal/config"
	"project-tracker/internal/handlers"
	"project-tracker/internal/logger"
	"project-tracker/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateUI(); err != nil {
		log.Fatalf("config: %v", err)
	}

	lg := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer func() { _ = lg.Sync() }()

	if !cfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	api := apiclient.New(cfg.APIBaseURL, cfg.APITimeout)
	r, err := server.NewRouter(server.Deps{
		Config:   cfg,
		Handler:  handlers.New(api, lg, cfg.PageSize),
		Logger:   lg,
		Registry: reg,
	})
	if err != nil {
		lg.Fatal("build router", zap.Error(err))
	}

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	lg.Info("starting admin UI", zap.String("addr", addr), zap.String("api", cfg.APIBaseURL))
	if err := r.Run(addr); err != nil {
		lg.Fatal("server error", zap.Error(err))
	}
}
