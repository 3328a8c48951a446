package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/EndiD-D/Imposter/internal/config"
	"github.com/EndiD-D/Imposter/internal/health"
	"github.com/EndiD-D/Imposter/internal/telegram"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system variables")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// uptime checks hit this regardless of game state
	go func() {
		if err := health.Serve(cfg.HealthPort); err != nil {
			log.Printf("health endpoint stopped: %v", err)
		}
	}()

	bot, err := telegram.NewBot(cfg)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	bot.Start()
}
