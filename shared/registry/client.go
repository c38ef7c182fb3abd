package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RegistryClient reads the registry. It is separate from ServiceRegistrar so
// that a process can look up peers without registering itself.
type RegistryClient struct {
	redisClient    redis.UniversalClient
	serviceTimeout time.Duration
}

func NewRegistryClient(redisClient redis.UniversalClient, serviceTimeout time.Duration) *RegistryClient {
	return &RegistryClient{
		redisClient:    redisClient,
		serviceTimeout: serviceTimeout,
	}
}

// GetActiveServices returns instanceID -> ServiceInfo for every instance of
// serviceType whose last heartbeat is within the service timeout.
func (rc *RegistryClient) GetActiveServices(ctx context.Context, serviceType string) (map[string]ServiceInfo, error) {
	results, err := rc.redisClient.HGetAll(ctx, hashKey(serviceType)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get all services of type %s from Redis: %w", serviceType, err)
	}
	return filterActive(results, serviceType, time.Now(), rc.serviceTimeout), nil
}

func filterActive(results map[string]string, serviceType string, now time.Time, timeout time.Duration) map[string]ServiceInfo {
	active := make(map[string]ServiceInfo)
	for instanceID, infoJSON := range results {
		var info ServiceInfo
		if err := json.Unmarshal([]byte(infoJSON), &info); err != nil {
			// malformed entries are removed by the registrar's cleanup loop
			log.Printf("WARN: RegistryClient: failed to unmarshal ServiceInfo for ID %s (type %s): %v", instanceID, serviceType, err)
			continue
		}
		if now.Sub(time.UnixMilli(info.LastSeen)) <= timeout {
			active[instanceID] = info
		}
	}
	return active
}
