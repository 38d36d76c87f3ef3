package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"placeminder/internal/api"
	"placeminder/internal/bot"
	"placeminder/internal/config"
	"placeminder/internal/placeindex"
	"placeminder/internal/places"
	"placeminder/internal/repository"
	"placeminder/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	placeRepo := repository.NewPlaceRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	seeder := service.NewSeedService(userRepo, categoryRepo)
	if err := seeder.Seed(ctx, service.DefaultUser{
		Username: cfg.DefaultUsername,
		Email:    cfg.DefaultEmail,
		Password: cfg.DefaultPassword,
	}); err != nil {
		log.Fatalf("seed: %v", err)
	}

	scheduler := service.NewSchedulerService(time.Local)
	scheduler.Start()
	defer scheduler.Stop()

	var provider places.Provider = places.NewGoogleClient(cfg.PlacesBaseURL, cfg.PlacesAPIKey, cfg.PlacesTimeout)
	if cfg.CacheTTL > 0 {
		provider = places.NewCachedProvider(provider, newCache(ctx, cfg, scheduler), cfg.CacheTTL)
	}

	nearbySvc := service.NewNearbyService(reminderRepo, categoryRepo, placeRepo, provider, cfg.PlacesTimeout)
	var searcher service.PlaceSearcher
	if cfg.ElasticURL != "" {
		index, err := placeindex.New(ctx, cfg.ElasticURL, cfg.ElasticIndex)
		if err != nil {
			log.Printf("[warn] place index disabled: %v", err)
		} else {
			nearbySvc.WithIndexer(index)
			searcher = index
		}
	}

	userSvc := service.NewUserService(userRepo)
	categorySvc := service.NewCategoryService(categoryRepo)
	reminderSvc := service.NewReminderService(reminderRepo, categoryRepo)
	notificationSvc := service.NewNotificationService(notificationRepo, reminderRepo, placeRepo)

	handler := &api.Handler{
		Users:         userSvc,
		Categories:    categorySvc,
		Reminders:     reminderSvc,
		Nearby:        nearbySvc,
		Notifications: notificationSvc,
		Places:        service.NewPlaceService(placeRepo, searcher),
		Username:      cfg.DefaultUsername,
	}
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[info] http listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[error] http server: %v", err)
			stop()
		}
	}()

	if cfg.TelegramToken != "" {
		telegramBot, err := bot.New(cfg.TelegramToken, cfg.DefaultUsername, bot.Services{
			Users:         userSvc,
			Categories:    categorySvc,
			Reminders:     reminderSvc,
			Nearby:        nearbySvc,
			Notifications: notificationSvc,
		})
		if err != nil {
			log.Fatalf("bot: %v", err)
		}
		go func() {
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("[error] bot stopped: %v", err)
			}
		}()
	}

	log.Println("Placeminder started.")
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[warn] http shutdown: %v", err)
	}
	log.Println("Shutdown complete.")
}

// newCache prefers Redis when configured and falls back to an in-process
// cache that the scheduler prunes.
func newCache(ctx context.Context, cfg config.Config, scheduler *service.SchedulerService) places.Cache {
	if cfg.RedisAddr != "" {
		client, err := places.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err == nil {
			log.Printf("[info] caching places in redis at %s", cfg.RedisAddr)
			return places.NewRedisCache(client)
		}
		log.Printf("[warn] redis unavailable, using memory cache: %v", err)
	}

	cache := places.NewMemoryCache()
	if cfg.PruneInterval > 0 {
		if _, err := scheduler.SchedulePrune(cfg.PruneInterval, "places cache", cache); err != nil {
			log.Fatalf("schedule cache prune: %v", err)
		}
	}
	return cache
}
