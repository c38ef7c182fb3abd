package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	draftapi "github.com/raonlive/DRAFT-SERVICES/draft/api"
	"github.com/raonlive/DRAFT-SERVICES/draft/service"
	"github.com/raonlive/DRAFT-SERVICES/draft/store"
	"github.com/raonlive/DRAFT-SERVICES/shared/api"
	"github.com/raonlive/DRAFT-SERVICES/shared/config"
	"github.com/raonlive/DRAFT-SERVICES/shared/league"
	"github.com/raonlive/DRAFT-SERVICES/shared/mongodb"
	redisu "github.com/raonlive/DRAFT-SERVICES/shared/redis"
	"github.com/raonlive/DRAFT-SERVICES/shared/registry"
)

const version = "1.0.0"

func main() {
	// --- 1. Load Configuration ---
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: no .env file loaded (%v), using process environment", err)
	}
	cfg, err := config.LoadDraftServiceConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	table, err := league.TableForWindow(cfg.RatingWindow)
	if err != nil {
		log.Fatalf("Invalid rating window: %v", err)
	}
	log.Printf("Configuration loaded for Draft Service. Listening on: %s, rating window %d", cfg.ListenAddr, table.Window)

	// --- 2. Connect to MongoDB ---
	mongoClient, err := mongodb.NewClient(context.Background(), cfg.MongoDBConnStr, cfg.MongoDBDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Printf("ERROR: closing MongoDB client: %v", err)
		}
	}()

	// --- 3. Initialize Data Stores ---
	playerStore := store.NewPlayerStore(mongoClient.Collection(cfg.MongoDBPlayersCollection))
	teamStore := store.NewTeamStore(mongoClient.Collection(cfg.MongoDBTeamsCollection))
	systemStore := store.NewSystemStore(mongoClient.Collection(cfg.MongoDBSystemCollection), cfg.DefaultLimit)
	voteStore := store.NewVoteStore(mongoClient.Collection(cfg.MongoDBVotesCollection))

	indexCtx, indexCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := mongoClient.EnsureIndexes(indexCtx, cfg.MongoDBPlayersCollection, playerStore.Indexes()); err != nil {
		log.Fatalf("Failed to ensure player indexes: %v", err)
	}
	if err := mongoClient.EnsureIndexes(indexCtx, cfg.MongoDBTeamsCollection, teamStore.Indexes()); err != nil {
		log.Fatalf("Failed to ensure team indexes: %v", err)
	}
	if err := mongoClient.EnsureIndexes(indexCtx, cfg.MongoDBVotesCollection, voteStore.Indexes()); err != nil {
		log.Fatalf("Failed to ensure vote indexes: %v", err)
	}
	indexCancel()
	log.Println("MongoDB stores initialized.")

	// --- 4. Initialize Business Logic Services ---
	playerService := service.NewPlayerService(playerStore, systemStore)
	ratingService := service.NewRatingService(playerStore, teamStore, table)
	settingsService := service.NewSettingsService(systemStore)
	teamService := service.NewTeamService(playerService, ratingService, settingsService, teamStore, systemStore, voteStore)
	log.Println("Draft Service business logic initialized.")

	// --- 5. Catch up ratings left behind by an earlier crash ---
	if cfg.RecoverOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		result, err := ratingService.Recover(ctx)
		cancel()
		switch {
		case errors.Is(err, service.ErrPartialRatingUpdate):
			log.Printf("WARN: startup recovery left %d players behind: %v", len(result.Failed), result.Failed)
		case err != nil:
			log.Printf("ERROR: startup recovery failed: %v", err)
		default:
			log.Printf("INFO: startup recovery replayed %d events, %d players written", result.Replayed, len(result.Updated))
		}
	}

	// --- 6. Connect to Redis and register ---
	redisClient, err := redisu.NewClient(cfg.RedisAddrs, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("ERROR: closing Redis client: %v", err)
		}
	}()

	registrar := registry.NewServiceRegistrar(redisClient, registry.DraftServiceType, version, &cfg.CommonConfig)
	registrar.Start()
	defer registrar.Stop()

	// --- 7. Setup HTTP Server and Register Routes ---
	baseServer := api.NewBaseServer(cfg.ListenAddr, cfg.AdminToken, log.Default())
	draftapi.NewDraftAPIHandlers(playerService, teamService, ratingService, settingsService, cfg.RequestTimeout).
		RegisterRoutes(baseServer.Router)
	log.Println("HTTP routes registered.")

	// --- 8. Start HTTP Server ---
	go func() {
		if err := baseServer.Start(); err != nil {
			log.Fatalf("HTTP server failed to start: %v", err)
		}
	}()

	// --- 9. Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down Draft Service...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := baseServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: HTTP server graceful shutdown failed: %v", err)
	}
	log.Println("Draft Service gracefully shut down.")
}
