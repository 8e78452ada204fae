/**
 * @description
 * This is the main entry point for the dashboard-service. It is responsible
 * for initializing all components of the service: configuration, the
 * core-banking API client, the event producer, the application service, the
 * background snapshot refresh, and the HTTP server. It wires everything
 * together and starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP serving.
 * - github.com/joho/godotenv: Loads a local .env file during development.
 * - internal/api, internal/app, internal/config: Internal packages.
 * - pkg/bankclient: Client for the core-banking API.
 * - pkg/rabbitmq: Client for RabbitMQ.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sbf/dashboard-service/internal/api"
	"github.com/sbf/dashboard-service/internal/app"
	"github.com/sbf/dashboard-service/internal/config"
	"github.com/sbf/dashboard-service/pkg/bankclient"
	"github.com/sbf/dashboard-service/pkg/rabbitmq"
)

func main() {
	// Load a local .env file if present; real deployments use the environment.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.BankAPIBaseURL) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"bank api base url must be configured\" env=BANK_API_BASE_URL")
	}

	log.Printf("level=info component=bootstrap msg=\"starting dashboard-service\" port=%s upstream=%s", cfg.ServerPort, cfg.BankAPIBaseURL)

	// Initialize the RabbitMQ producer to publish transfer events. A missing
	// broker degrades to a no-op publisher rather than blocking startup.
	var producer rabbitmq.Publisher
	if strings.TrimSpace(cfg.RabbitMQURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"rabbitmq url missing; transfer events disabled\"")
		producer = &rabbitmq.EventProducerFallback{}
	} else {
		eventProducer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", err)
			producer = &rabbitmq.EventProducerFallback{}
		} else {
			defer eventProducer.Close()
			log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
			producer = eventProducer
		}
	}

	// Initialize the client for the core-banking API.
	bankClient := bankclient.NewClient(cfg.BankAPIBaseURL, cfg.BankAPIUsername)

	// Initialize the core application service with its dependencies.
	dashboardService := app.NewService(
		bankClient,
		producer,
		app.StatusEligibility(cfg.EligibleStatusList()),
		cfg.MinTransferAmount,
		cfg.FallbackCurrency,
		cfg.TransferEventExchange,
		cfg.TransferEventRoutingKey,
	)

	// Warm the snapshot cache. Failures are not fatal: the first request (or
	// the scheduled refresh) will retry.
	warmCtx, cancelWarm := context.WithTimeout(context.Background(), 90*time.Second)
	if _, err := dashboardService.RefreshSnapshot(warmCtx); err != nil {
		log.Printf("level=warn component=bootstrap msg=\"initial snapshot fetch failed; serving cold\" err=%v", err)
	}
	cancelWarm()

	// Start the periodic snapshot refresh.
	scheduler := app.NewScheduler(dashboardService, cfg.SnapshotRefreshSchedule)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"snapshot refresh schedule invalid\" schedule=%q err=%v", cfg.SnapshotRefreshSchedule, err)
	}

	// Initialize the API handlers and router.
	handlers := api.NewDashboardHandlers(dashboardService)
	router := api.DashboardRoutes(handlers, cfg.CORSOriginList())

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}
	<-scheduler.Stop().Done()

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
