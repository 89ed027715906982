package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/shiftline/account-lifecycle-service/internal/identity"
	"github.com/shiftline/account-lifecycle-service/internal/lifecycle"
	"github.com/shiftline/account-lifecycle-service/internal/monitoring"
	"github.com/shiftline/account-lifecycle-service/internal/notify"
	"github.com/shiftline/account-lifecycle-service/internal/store"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var (
		port        = flag.Int("port", 8080, "Port for the HTTP API")
		dbHost      = flag.String("db-host", "localhost", "Database host")
		dbPort      = flag.Int("db-port", 5432, "Database port")
		dbUser      = flag.String("db-user", "admin", "Database user")
		dbPass      = flag.String("db-pass", "securepassword", "Database password")
		dbName      = flag.String("db-name", "shiftline", "Database name")
		redisAddr   = flag.String("redis-addr", "localhost:6379", "Redis address")
		awsRegion   = flag.String("aws-region", "us-east-1", "AWS region of the Cognito user pool")
		userPoolID  = flag.String("user-pool-id", "", "Cognito user pool ID")
		kafkaBroker = flag.String("kafka-broker", "localhost:9092", "Kafka broker address")
		kafkaTopic  = flag.String("kafka-topic", "account-notifications", "Kafka notification topic")
	)
	flag.Parse()

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		*dbHost, *dbPort, *dbUser, *dbPass, *dbName)

	repo, err := store.NewRepository(context.Background(), dsn, *redisAddr)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer repo.Close()

	identityStore, err := identity.NewCognitoStore(*awsRegion, *userPoolID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create identity store")
	}

	notifier := notify.NewKafkaNotifier(*kafkaBroker, *kafkaTopic)
	defer notifier.Close()

	coordinator := lifecycle.NewCoordinator(identityStore, repo, notifier)

	monitoring.InitMetrics()

	log.Info().Msgf("Starting Account Lifecycle Service on port %d", *port)

	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: newRouter(coordinator),
	}
	go func() {
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start HTTP API server")
		}
	}()

	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		mux.Handle("/metrics", promhttp.Handler())

		httpServer := &http.Server{
			Addr:    ":8081",
			Handler: mux,
		}

		log.Info().Msg("HTTP server for health checks and metrics started on port 8081")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	if err := apiServer.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("HTTP API shutdown error")
	}
	log.Info().Msg("Server exiting")
}
