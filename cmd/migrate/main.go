package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"wiki-quiz/internal/config"
	"wiki-quiz/internal/database"
	"wiki-quiz/internal/logger"

	"go.uber.org/zap"
)

const usage = "usage: migrate [up|down|version]"

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "up", "down", "version":
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer logger.Sync()

	db, err := database.NewSQLXDB(context.Background(), cfg.DB)
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	mg, err := database.NewMigrator(db.DB, cfg.DB.Driver)
	if err != nil {
		_ = db.Close()
		l.Fatal("Failed to prepare migrations", zap.Error(err))
	}
	defer mg.Close()

	switch cmd {
	case "up":
		err = mg.Up()
	case "down":
		err = mg.Down()
	case "version":
		var (
			v     uint
			dirty bool
		)
		if v, dirty, err = mg.Version(); err == nil {
			fmt.Printf("version=%d dirty=%t\n", v, dirty)
		}
	}
	if err != nil {
		l.Fatal("Migration command failed", zap.String("command", cmd), zap.Error(err))
	}
}
