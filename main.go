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

	"github.com/redis/go-redis/v9"

	"hangouts-server/config"
	"hangouts-server/handlers"
	"hangouts-server/services"
	"hangouts-server/store/memstore"
	"hangouts-server/store/mongostore"
	"hangouts-server/store/pgstore"
)

// backend is what every store implementation provides.
type backend interface {
	services.UserStore
	services.FriendshipStore
	services.CheckinStore
	services.AttendeeStore
	Close(ctx context.Context) error
}

func openBackend(ctx context.Context, cfg *config.Config) (backend, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return pgstore.Connect(ctx, cfg.DatabaseURL)
	case config.DriverMemory:
		log.Println("Using in-memory store; data is lost on restart")
		return memstore.New(), nil
	default:
		return mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Redis
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	db, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	log.Printf("Connected to %s store", cfg.StoreDriver)

	var notifier services.Notifier = services.LogNotifier{}
	if cfg.Notifier == config.NotifierRedis {
		notifier = services.NewRedisNotifier(redisClient, cfg.NotifyChannel)
	}

	// Initialize services and handlers
	userService := services.NewUserService(db, nil)
	sessionService := services.NewSessionService(redisClient, cfg.JWTSecret, nil)

	router := handlers.NewRouter(handlers.Handlers{
		Auth:   handlers.NewAuthHandler(userService, sessionService, handlers.CookieConfig{Name: cfg.CookieName, Secure: cfg.CookieSecure}),
		User:   handlers.NewUserHandler(userService),
		Friend: handlers.NewFriendHandler(services.NewFriendService(db, db, nil)),
		Checkin: handlers.NewCheckinHandler(
			services.NewCheckinService(db, db, nil),
			services.NewAttendanceService(db, db, db, notifier, nil),
		),
		Feed: handlers.NewFeedHandler(
			services.NewFeedService(db, db, db, db, nil),
			services.NewStatsService(db, cfg.CommunityScanLimit),
		),
	}, handlers.RouterConfig{
		Sessions:       sessionService,
		CookieName:     cfg.CookieName,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	if err := db.Close(shutdownCtx); err != nil {
		log.Printf("Failed to close store: %v", err)
	}
}
