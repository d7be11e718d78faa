package main

import (
	"context"
	"log"
	"os"

	"stockbot/src/config"
	"stockbot/src/database"
	"stockbot/src/utils"

	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig("./settings", os.Getenv("ENV"))
	if err != nil {
		log.Fatalf("Error loading config for environment: %v", err)
	}

	sqlCfg := cfg.Databases.SQL
	if err := database.ResolvePassword(context.Background(), &sqlCfg); err != nil {
		log.Fatalf("Failed to resolve database password: %v", err)
	}

	db, err := gorm.Open(postgres.Open(database.DSN(sqlCfg)), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB from GORM DB: %v", err)
	}
	defer sqlDB.Close()

	logger, err := utils.NewLogger(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	goose.SetLogger(logger)

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("Failed to set goose dialect: %v", err)
	}

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	if err := goose.RunContext(context.Background(), command, sqlDB, "./migrations", os.Args[min(len(os.Args), 2):]...); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database migration completed successfully")
}
