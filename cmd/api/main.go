package main

import (
	"log"

	"journey-backend/internal/bootstrap"
	"journey-backend/internal/shared/config"
	"journey-backend/internal/shared/server"
)

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close()

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s (env=%s store=%s llm=%s jobs=%s)", addr, cfg.Env, cfg.ObjectStoreType, cfg.LLMProvider, cfg.JobStore)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
