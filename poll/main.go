package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	pollapi "github.com/raonlive/DRAFT-SERVICES/poll/api"
	"github.com/raonlive/DRAFT-SERVICES/poll/notify"
	"github.com/raonlive/DRAFT-SERVICES/poll/scheduler"
	"github.com/raonlive/DRAFT-SERVICES/poll/service"
	"github.com/raonlive/DRAFT-SERVICES/poll/store"
	"github.com/raonlive/DRAFT-SERVICES/shared/api"
	"github.com/raonlive/DRAFT-SERVICES/shared/cluster"
	"github.com/raonlive/DRAFT-SERVICES/shared/config"
	redisu "github.com/raonlive/DRAFT-SERVICES/shared/redis"
	"github.com/raonlive/DRAFT-SERVICES/shared/registry"
	draftclient "github.com/raonlive/DRAFT-SERVICES/shared/service"
)

const version = "1.0.0"

func main() {
	// --- 1. Load Configuration ---
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: no .env file loaded (%v), using process environment", err)
	}
	cfg, err := config.LoadPollServiceConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded for Poll Service. Listening on: %s", cfg.ListenAddr)

	// --- 2. Connect to Redis ---
	redisClient, err := redisu.NewClient(cfg.RedisAddrs, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("ERROR: closing Redis client: %v", err)
		}
	}()

	// --- 3. Register and join the sampler ring ---
	registrar := registry.NewServiceRegistrar(redisClient, registry.PollServiceType, version, &cfg.CommonConfig)
	registrar.Start()
	defer registrar.Stop()

	registryClient := registry.NewRegistryClient(redisClient, cfg.HeartbeatTTL)
	assignment := cluster.NewServiceAssignmentManager(registryClient, registrar.GetServiceID(), registrar.GetServiceType(), cfg.HeartbeatInterval)
	go assignment.Start()
	defer assignment.Stop()

	// --- 4. Initialize the matchup slot and poll logic ---
	var slot service.SlotStore
	switch cfg.SlotBackend {
	case "memory":
		slot = store.NewMemorySlotStore()
		log.Println("WARN: using in-process matchup slot; run a single poll-service instance")
	default:
		slot = store.NewRedisSlotStore(redisClient, 2*cfg.MatchupInterval)
	}

	draft := draftclient.NewDraftClient(cfg.DraftServiceURL, cfg.AdminToken, cfg.RequestTimeout)
	pollService := service.NewPollService(draft, slot, cfg.MatchupThreshold, cfg.MatchupInterval, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.TelegramToken != "" {
		announcer, err := notify.NewTelegramAnnouncer(cfg.TelegramToken, cfg.TelegramChatID, pollService, cfg.RequestTimeout)
		if err != nil {
			log.Fatalf("Failed to create Telegram announcer: %v", err)
		}
		pollService.SetAnnouncer(announcer)
		go announcer.Run(ctx)
		log.Println("Telegram announcer started.")
	}

	// --- 5. Start the sampler timer ---
	sampler, err := scheduler.NewSampler(pollService, assignment, cfg.CheckInterval, cfg.RequestTimeout)
	if err != nil {
		log.Fatalf("Failed to create sampler: %v", err)
	}
	if err := sampler.Start(); err != nil {
		log.Fatalf("Failed to start sampler: %v", err)
	}
	defer func() {
		if err := sampler.Stop(); err != nil {
			log.Printf("ERROR: stopping sampler: %v", err)
		}
	}()

	// --- 6. Setup HTTP Server and Register Routes ---
	baseServer := api.NewBaseServer(cfg.ListenAddr, cfg.AdminToken, log.Default())
	pollapi.NewPollAPIHandlers(pollService, cfg.RequestTimeout).RegisterRoutes(baseServer.Router)

	go func() {
		if err := baseServer.Start(); err != nil {
			log.Fatalf("HTTP server failed to start: %v", err)
		}
	}()

	// --- 7. Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down Poll Service...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := baseServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: HTTP server graceful shutdown failed: %v", err)
	}
	log.Println("Poll Service gracefully shut down.")
}
