package main

import (
	"log"

	"plataforma_backend/internal/app"
	"plataforma_backend/internal/config"
	"plataforma_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
