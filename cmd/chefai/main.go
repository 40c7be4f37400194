package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"chefai/internal/api"
	"chefai/internal/chef"
	"chefai/internal/config"
	"chefai/internal/corpus"
	"chefai/internal/intent"
	"chefai/internal/models"
	"chefai/internal/monitoring"
	"chefai/internal/retrieval"
	"chefai/internal/session"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Server.MetricsPort = *metricsPort
	}

	// Open and seed the corpus database
	db, err := corpus.Open(cfg.Corpus.Driver, cfg.Corpus.DSN)
	if err != nil {
		log.Fatalf("Failed to open corpus database: %v", err)
	}
	defer db.Close()

	if err := corpus.Seed(db, cfg.Corpus.SeedFile); err != nil {
		log.Fatalf("Failed to seed corpus: %v", err)
	}

	// Build the retriever and embed the corpus
	embedder, err := retrieval.NewEmbedder(cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to initialize embedder: %v", err)
	}

	retriever := retrieval.NewRetriever(embedder)
	if err := retriever.LoadFromCorpus(ctx, db); err != nil {
		log.Fatalf("Failed to load corpus into retriever: %v", err)
	}

	// Monitoring
	metricsCollector := monitoring.NewMetricsCollector()
	monitor := monitoring.NewMonitor()

	// Model backends
	registry := models.NewRegistry(cfg.Models)
	generator := models.NewGenerator(registry, cfg.Models.SerializeInference)
	generator.SetInferenceObserver(metricsCollector.RecordInference)

	// Assemble the assistant
	classifier := intent.NewClassifier(generator, cfg.Router.ClassifyWithHistory)
	sessions := session.NewStore(cfg.Session.Capacity)
	chefSvc := chef.New(generator, retriever, sessions, classifier, cfg.Router,
		chef.WithMetrics(metricsCollector),
		chef.WithMonitor(monitor),
	)

	var tokens *api.TokenManager
	if secret := cfg.Auth.Secret(); secret != "" {
		tokens = api.NewTokenManager(secret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
		log.Println("Session token auth enabled")
	} else {
		log.Printf("Session token auth disabled (%s not set)", cfg.Auth.SecretEnv)
	}

	chatAPI := api.NewChatAPI(chefSvc, tokens, monitor)

	// Start metrics server
	go startMetricsServer(cfg.Server.MetricsPort, metricsCollector)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: chatAPI.Router,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down servers...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}

		cancel()
	}()

	log.Printf("Starting API server on port %d", cfg.Server.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

func startMetricsServer(port int, mc *monitoring.MetricsCollector) {
	metricsRouter := gin.Default()
	metricsRouter.GET("/metrics", gin.WrapH(mc.Handler()))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Printf("Starting metrics server on port %d", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}
