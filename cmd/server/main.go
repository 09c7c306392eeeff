package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"frictionstudy/internal/cache"
	"frictionstudy/internal/catalog"
	"frictionstudy/internal/config"
	"frictionstudy/internal/repository"
	"frictionstudy/internal/service"
	"frictionstudy/internal/transport/rest"
	"frictionstudy/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// Study variant and item catalog are fixed for the life of the process
	study, err := config.LoadStudy(cfg.StudyFile)
	if err != nil {
		log.Fatal("Failed to load study config:", err)
	}
	log.Printf("Study config:")
	log.Printf("  Phases:       prescreening=%t guidelines=%t survey=%t",
		study.Phases.Prescreening, study.Phases.Guidelines, study.Phases.Survey)
	log.Printf("  Verify delay: %s", study.Policy.VerifyDelay)
	log.Printf("  Justify:      %s (min %d words)", study.Policy.JustificationMode, study.Policy.MinWords)
	log.Printf("  On failure:   %s", study.ResponseFailure)

	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		if cat, err = catalog.Load(cfg.CatalogFile); err != nil {
			log.Fatal("Failed to load catalog:", err)
		}
	} else {
		log.Println("Warning: CATALOG_PATH not set, using built-in catalog")
	}
	log.Printf("Catalog: %d items", cat.Len())

	// Persistence sink
	var sink repository.Sink
	switch cfg.SinkBackend {
	case "mongo":
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal("Failed to connect to MongoDB:", err)
		}
		defer mongoClient.Disconnect(ctx)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := mongoClient.Ping(pingCtx, nil); err != nil {
			log.Fatal("Failed to ping MongoDB:", err)
		}
		log.Println("Connected to MongoDB")

		db := mongoClient.Database(cfg.MongoDB)
		if err := repository.EnsureIndexes(pingCtx, db); err != nil {
			log.Fatal("Failed to create indexes:", err)
		}
		sink = repository.NewMongoSink(db)
	case "memory":
		log.Println("Warning: SINK_BACKEND=memory, records are lost on exit")
		sink = repository.NewMemorySink()
	default:
		log.Fatalf("Unknown SINK_BACKEND %q", cfg.SinkBackend)
	}

	// Session store and monitor counters
	var (
		sessions cache.SessionStore
		stats    cache.StatsCache
	)
	switch cfg.SessionBackend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
		defer rdb.Close()

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatal("Failed to ping Redis:", err)
		}
		log.Println("Connected to Redis")
		sessions = cache.NewSessionCache(rdb, cfg.SessionTTL)
		stats = cache.NewStatsCache(rdb)
	case "memory":
		sessions = cache.NewMemorySessionStore()
		stats = cache.NewMemoryStats()
	default:
		log.Fatalf("Unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWTSecret, cfg.SessionTTL)
	studySvc := service.NewStudyService(cat, sessions, sink, authSvc, study)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	studySvc.SetBroadcaster(wsHub)
	studySvc.SetStats(stats)

	// Create router with container
	container := &rest.Container{
		AuthService:  authSvc,
		StudyService: studySvc,
		WSHub:        wsHub,
		MonitorKey:   cfg.MonitorKey,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/sessions")
		log.Println("  GET  /v1/session")
		log.Println("  POST /v1/session/{consent,prescreening,guidelines,verify,decisions,survey}")
		log.Println("  PUT  /v1/session/justification")
		log.Println("  WS   /v1/ws/session")
		if cfg.MonitorKey != "" {
			log.Println("  WS   /v1/ws/monitor")
			log.Println("  GET  /v1/monitor/stats")
		}

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
