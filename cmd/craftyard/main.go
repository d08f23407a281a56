package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"craftyard/internal/cache"
	"craftyard/internal/config"
	"craftyard/internal/http/handlers"
	applog "craftyard/internal/log"
	"craftyard/internal/repos"
	"craftyard/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Search cache: explicit instance with its sweep goroutine
	searchCache := cache.New(cache.Config{
		Capacity:      cfg.CacheCapacity,
		TTL:           cfg.CacheTTL,
		SweepInterval: cfg.SweepInterval,
	})
	searchCache.Start()

	authSvc := &services.AuthService{Artisans: repos.NewArtisanRepo(db)}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   fiber.Map{"kind": "internal", "message": "something went wrong, please retry"},
			})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	// ---------- Routes ----------
	deps := handlers.NewDeps(db, searchCache, authSvc)

	api := app.Group("/api/v1")

	searchLimiter := limiter.New(limiter.Config{
		Max:        30,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.search.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Get("/products/search", searchLimiter, deps.CatalogHandler.Search)
	api.Get("/products/:id", deps.CatalogHandler.Detail)
	api.Get("/categories", deps.CatalogHandler.Categories)

	api.Post("/login", limiter.New(limiter.Config{Max: 5, Expiration: 10 * time.Minute}), deps.AuthHandler.Login)
	api.Post("/logout", deps.AuthHandler.Logout)

	// Mutations are guarded per route; the read routes above stay public.
	owner := handlers.RequireArtisan(authSvc)
	api.Post("/products", owner, deps.ProductHandler.Create)
	api.Patch("/products/:id", owner, deps.ProductHandler.Update)
	api.Post("/products/:id/deactivate", owner, deps.ProductHandler.Deactivate)
	api.Put("/products/:id/inventory", owner, deps.ProductHandler.SetInventory)
	api.Patch("/products/:id/quantity", owner, deps.ProductHandler.SetQuantity)
	api.Put("/products/:id/stock", owner, deps.ProductHandler.SetStock)
	api.Post("/products/:id/reduce", owner, deps.ProductHandler.Reduce)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	err = app.Listen(":" + cfg.Port)
	searchCache.Close()
	log.Fatal(err)
}
