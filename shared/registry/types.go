// shared/registry/types.go
package registry

import redisu "github.com/raonlive/DRAFT-SERVICES/shared/redis"

// ServiceInfo is the heartbeat payload stored under services:<serviceType>.
type ServiceInfo struct {
	ServiceID   string            `json:"serviceId"`
	ServiceType string            `json:"serviceType"`
	IP          string            `json:"ip"`
	Port        int               `json:"port"`
	LastSeen    int64             `json:"last_seen"` // unix millis
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Service type names used as registry hash suffixes.
const (
	DraftServiceType = "draft-service"
	PollServiceType  = "poll-service"
)

func hashKey(serviceType string) string {
	return redisu.RegistryHashPrefix + serviceType
}
