// shared/cluster/assignment_manager.go
package cluster

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/raonlive/DRAFT-SERVICES/shared/registry"
	"github.com/stathat/consistent"
)

// SamplerTaskKey is hashed onto the ring to pick the one poll-service
// instance that runs the matchup timer.
const SamplerTaskKey = "matchup_sampler_task"

// ActiveServiceLister is the part of the registry the manager reads.
type ActiveServiceLister interface {
	GetActiveServices(ctx context.Context, serviceType string) (map[string]registry.ServiceInfo, error)
}

// ServiceAssignmentManager decides which live instance of a service type
// owns a given key, using consistent hashing over the registry's members.
type ServiceAssignmentManager struct {
	lister         ActiveServiceLister
	serviceID      string
	serviceType    string
	updateInterval time.Duration

	chMux          sync.RWMutex
	consistentHash *consistent.Consistent

	ctx    context.Context
	cancel context.CancelFunc
}

func NewServiceAssignmentManager(lister ActiveServiceLister, serviceID, serviceType string, updateInterval time.Duration) *ServiceAssignmentManager {
	ctx, cancel := context.WithCancel(context.Background())

	ring := consistent.New()
	// until the first refresh this instance assumes it is alone
	ring.Add(serviceID)

	log.Printf("INFO: ServiceAssignmentManager for '%s' (ID: %s) refreshes every %v", serviceType, serviceID, updateInterval)
	return &ServiceAssignmentManager{
		lister:         lister,
		serviceID:      serviceID,
		serviceType:    serviceType,
		updateInterval: updateInterval,
		consistentHash: ring,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Start refreshes the ring until Stop is called. Run it in a goroutine.
func (sam *ServiceAssignmentManager) Start() {
	ticker := time.NewTicker(sam.updateInterval)
	defer ticker.Stop()

	sam.Refresh(sam.ctx)
	for {
		select {
		case <-sam.ctx.Done():
			log.Println("INFO: ServiceAssignmentManager loop shutting down.")
			return
		case <-ticker.C:
			sam.Refresh(sam.ctx)
		}
	}
}

func (sam *ServiceAssignmentManager) Stop() {
	sam.cancel()
}

// Refresh rebuilds the ring if the set of active members changed.
func (sam *ServiceAssignmentManager) Refresh(ctx context.Context) {
	activeServices, err := sam.lister.GetActiveServices(ctx, sam.serviceType)
	if err != nil {
		log.Printf("ERROR: ServiceAssignmentManager: failed to list active '%s' services: %v", sam.serviceType, err)
		return
	}

	members := make([]string, 0, len(activeServices))
	for id := range activeServices {
		members = append(members, id)
	}
	slices.Sort(members)

	sam.chMux.Lock()
	defer sam.chMux.Unlock()

	current := sam.consistentHash.Members()
	slices.Sort(current)
	if slices.Equal(members, current) {
		return
	}

	ring := consistent.New()
	ring.Set(members)
	sam.consistentHash = ring
	log.Printf("INFO: ServiceAssignmentManager: ring for '%s' now has members %v", sam.serviceType, members)
}

// IsResponsible reports whether this instance owns key.
func (sam *ServiceAssignmentManager) IsResponsible(key string) (bool, error) {
	sam.chMux.RLock()
	defer sam.chMux.RUnlock()

	if len(sam.consistentHash.Members()) == 0 {
		return false, fmt.Errorf("consistent hash ring is empty for service type %s", sam.serviceType)
	}

	owner, err := sam.consistentHash.Get(key)
	if err != nil {
		return false, fmt.Errorf("failed to resolve owner of '%s' (type %s): %w", key, sam.serviceType, err)
	}
	return owner == sam.serviceID, nil
}
