package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hearthsim/go-ngdp/pkg/ngdp"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	config := LoadConfig()

	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		TimeFormat: time.TimeOnly,
	}))

	log.Info("starting ngdp-mirror",
		"product", config.Product,
		"region", config.Region,
		"port", config.Port,
	)

	client := ngdp.New(config.Product, config.Region,
		ngdp.WithCache(ngdp.NewCache(config.CacheDir)),
		ngdp.WithLogger(log),
	)
	log.Info("cache ready", "dir", client.Cache().Dir())

	server := NewServer(client, log)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "*",
		AllowMethods: "GET,OPTIONS",
	}))

	app.Use(logger.New(logger.Config{
		Format: "${method} ${path} - ${status} (${latency})\n",
	}))

	server.SetupRoutes(app)

	addr := fmt.Sprintf(":%d", config.Port)

	go func() {
		log.Info("mirror listening", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		log.Error("error closing server", "error", err)
	}
}
