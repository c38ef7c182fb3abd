package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/raonlive/DRAFT-SERVICES/shared/config"
	"github.com/redis/go-redis/v9"
)

// ServiceRegistrar heartbeats this instance into the Redis registry and
// prunes stale peers of the same type.
type ServiceRegistrar struct {
	redisClient redis.UniversalClient
	serviceType string
	cfg         *config.CommonConfig
	serviceID   string
	version     string
	stopChan    chan struct{}
	doneChan    chan struct{}
}

func NewServiceRegistrar(redisClient redis.UniversalClient, serviceType, version string, cfg *config.CommonConfig) *ServiceRegistrar {
	return &ServiceRegistrar{
		redisClient: redisClient,
		serviceType: serviceType,
		cfg:         cfg,
		serviceID:   fmt.Sprintf("%s-%s", serviceType, uuid.New().String()),
		version:     version,
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
	}
}

// Start registers once synchronously, then heartbeats in the background.
func (sr *ServiceRegistrar) Start() {
	log.Printf("INFO: starting service registrar for %s (ID: %s) at %s:%d",
		sr.serviceType, sr.serviceID, sr.cfg.ServiceIP, sr.cfg.ServicePort)
	sr.heartbeat()
	go sr.run()
}

// Stop ends the heartbeat loop and removes this instance from the registry.
func (sr *ServiceRegistrar) Stop() {
	close(sr.stopChan)
	<-sr.doneChan

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sr.redisClient.HDel(ctx, hashKey(sr.serviceType), sr.serviceID).Err(); err != nil {
		log.Printf("ERROR: failed to remove %s (ID: %s) from registry on shutdown: %v", sr.serviceType, sr.serviceID, err)
		return
	}
	log.Printf("INFO: %s (ID: %s) removed from registry.", sr.serviceType, sr.serviceID)
}

func (sr *ServiceRegistrar) run() {
	defer close(sr.doneChan)

	ticker := time.NewTicker(sr.cfg.HeartbeatInterval)
	defer ticker.Stop()

	var cleanup <-chan time.Time
	if sr.cfg.RegistryCleanupInterval > 0 {
		cleanupTicker := time.NewTicker(sr.cfg.RegistryCleanupInterval)
		defer cleanupTicker.Stop()
		cleanup = cleanupTicker.C
	}

	for {
		select {
		case <-ticker.C:
			sr.heartbeat()
		case <-cleanup:
			sr.pruneStale()
		case <-sr.stopChan:
			return
		}
	}
}

func (sr *ServiceRegistrar) heartbeat() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	infoJSON, err := json.Marshal(ServiceInfo{
		ServiceID:   sr.serviceID,
		ServiceType: sr.serviceType,
		IP:          sr.cfg.ServiceIP,
		Port:        sr.cfg.ServicePort,
		LastSeen:    time.Now().UnixMilli(),
		Metadata:    map[string]string{"version": sr.version},
	})
	if err != nil {
		log.Printf("ERROR: failed to marshal ServiceInfo for %s (ID: %s): %v", sr.serviceType, sr.serviceID, err)
		return
	}

	if err := sr.redisClient.HSet(ctx, hashKey(sr.serviceType), sr.serviceID, infoJSON).Err(); err != nil {
		log.Printf("ERROR: heartbeat for %s (ID: %s) failed: %v", sr.serviceType, sr.serviceID, err)
	}
}

func (sr *ServiceRegistrar) pruneStale() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	key := hashKey(sr.serviceType)
	results, err := sr.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		log.Printf("ERROR: registry cleanup could not read %s: %v", key, err)
		return
	}

	for _, instanceID := range staleIDs(results, time.Now(), sr.cfg.HeartbeatTTL) {
		if err := sr.redisClient.HDel(ctx, key, instanceID).Err(); err != nil {
			log.Printf("ERROR: registry cleanup failed to delete %s from %s: %v", instanceID, key, err)
			continue
		}
		log.Printf("INFO: registry cleanup removed stale instance %s from %s", instanceID, key)
	}
}

// staleIDs returns the entries that are unreadable or older than ttl.
func staleIDs(results map[string]string, now time.Time, ttl time.Duration) []string {
	var stale []string
	for instanceID, infoJSON := range results {
		var info ServiceInfo
		if err := json.Unmarshal([]byte(infoJSON), &info); err != nil {
			stale = append(stale, instanceID)
			continue
		}
		if now.Sub(time.UnixMilli(info.LastSeen)) > ttl {
			stale = append(stale, instanceID)
		}
	}
	return stale
}

func (sr *ServiceRegistrar) GetServiceID() string {
	return sr.serviceID
}

func (sr *ServiceRegistrar) GetServiceType() string {
	return sr.serviceType
}
