package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mahotsav/backend/internal/cache"
	"mahotsav/backend/internal/config"
	"mahotsav/backend/internal/docstore"
	"mahotsav/backend/internal/domain"
	"mahotsav/backend/internal/httpapi"
	"mahotsav/backend/internal/service"
	"mahotsav/backend/internal/store"
)

func main() {
	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	closers := make([]func() error, 0, 2)

	var gateway docstore.Gateway
	seedDemo := false
	switch {
	case cfg.MongoURI != "":
		mg, err := docstore.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Fatalf("mongo unavailable (%v) and MONGO_URI is set; refusing to start with in-memory fallback", err)
		}
		gateway = mg
		closers = append(closers, func() error {
			closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer closeCancel()
			return mg.Close(closeCtx)
		})
		log.Println("document store: mongo")
	case cfg.DatabaseURL != "":
		pg, err := docstore.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
		}
		gateway = pg
		closers = append(closers, pg.Close)
		log.Println("document store: postgres")
	default:
		gateway = docstore.NewMemory()
		seedDemo = true
		log.Println("document store: in-memory (data is lost on restart)")
	}

	settingsCache := cache.SettingsCache(cache.NoopSettingsCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisSettingsCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using noop cache", err)
		} else {
			settingsCache = redisCache
			closers = append(closers, redisCache.Close)
			log.Println("settings cache: redis")
		}
	} else {
		log.Println("settings cache: noop")
	}

	repo := store.New(gateway)
	if seedDemo {
		if err := seedDemoData(ctx, repo); err != nil {
			log.Printf("demo seed failed: %v", err)
		}
	}
	svc := service.New(repo, settingsCache, time.Duration(cfg.SettingsTTLSeconds)*time.Second)
	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, cfg.AdminPassword)
	api := httpapi.New(svc, auth, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("exhibition backend listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}

// seedDemoData loads a small data set into the in-memory store so the API is
// usable out of the box in dev mode. Never runs against mongo or postgres.
func seedDemoData(ctx context.Context, repo store.Repository) error {
	exhibition, err := repo.CreateExhibition(ctx, domain.Exhibition{
		Name:      "Demo Exhibition",
		Venue:     "Fairground",
		StartDate: "2026-01-05",
		EndDate:   "2026-01-15",
		IsActive:  true,
	})
	if err != nil {
		return err
	}

	_, err = repo.CreateRegistration(ctx, domain.Registration{
		ExhibitionID: exhibition.ID,
		StallNumber:  "A-1",
		Participants: []domain.Participant{{Name: "Demo Participant"}},
		Inventory: []domain.StallInventoryItem{
			{ProductCategory: "Handloom", ProductName: "Cotton Saree"},
			{ProductCategory: "Handicraft", ProductName: "Dhokra Figurine"},
		},
	})
	if err != nil {
		return err
	}

	_, err = repo.CreateProduct(ctx, domain.Product{
		Name:        "Dhokra Horse",
		Category:    "Handicraft",
		PriceRupees: 1200,
		Available:   true,
	})
	if err != nil {
		return err
	}

	log.Println("demo data seeded")
	return nil
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if len(cfg.AdminPassword) < 8 {
		return fmt.Errorf("ADMIN_PASSWORD must be set and at least 8 characters")
	}
	if isWeakPassword(cfg.AdminPassword) {
		return fmt.Errorf("ADMIN_PASSWORD is too weak")
	}
	return nil
}

// isWeakPassword rejects a handful of passwords that show up in every breach
// list; anything longer and unlisted is the operator's responsibility.
func isWeakPassword(password string) bool {
	known := map[string]bool{
		"password":   true,
		"password1":  true,
		"12345678":   true,
		"123456789":  true,
		"qwertyuiop": true,
		"admin@123":  true,
		"admin123":   true,
		"letmein1":   true,
	}
	return known[password]
}
