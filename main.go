package main

import (
	"log"
	"os"

	"lordcord/bot"
	"lordcord/config"
	"lordcord/handlers"
	"lordcord/utils/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	db, err := database.InitExpiryDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Error initializing expiry database: %v", err)
	}
	defer db.Close()

	b, err := bot.New(cfg, db)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	handlers.Register(b)

	b.Run()

	defer b.Close()
}
