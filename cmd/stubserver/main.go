package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"budgetbook/internal/config"
	"budgetbook/internal/stubserver"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	server := stubserver.New(cfg.Stub.JWTSecret)

	addr := fmt.Sprintf(":%d", cfg.Stub.Port)
	slog.Info("starting stub API server", "addr", addr)

	if err := http.ListenAndServe(addr, server.Handler()); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
