package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/raonlive/DRAFT-SERVICES/shared/registry"
)

type fakeLister struct {
	ids []string
	err error
}

func (f *fakeLister) GetActiveServices(ctx context.Context, serviceType string) (map[string]registry.ServiceInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]registry.ServiceInfo, len(f.ids))
	for _, id := range f.ids {
		out[id] = registry.ServiceInfo{ServiceID: id, ServiceType: serviceType}
	}
	return out, nil
}

func TestSingleInstanceOwnsEverything(t *testing.T) {
	sam := NewServiceAssignmentManager(&fakeLister{}, "poll-1", registry.PollServiceType, 0)
	ok, err := sam.IsResponsible(SamplerTaskKey)
	if err != nil {
		t.Fatalf("IsResponsible: %v", err)
	}
	if !ok {
		t.Errorf("lone instance should own %q", SamplerTaskKey)
	}
}

func TestExactlyOneOwnerAcrossInstances(t *testing.T) {
	ids := []string{"poll-a", "poll-b", "poll-c"}
	owners := 0
	for _, id := range ids {
		sam := NewServiceAssignmentManager(&fakeLister{ids: ids}, id, registry.PollServiceType, 0)
		sam.Refresh(context.Background())
		ok, err := sam.IsResponsible(SamplerTaskKey)
		if err != nil {
			t.Fatalf("IsResponsible(%s): %v", id, err)
		}
		if ok {
			owners++
		}
	}
	if owners != 1 {
		t.Errorf("owners = %d, want 1", owners)
	}
}

func TestRefreshErrorKeepsRing(t *testing.T) {
	lister := &fakeLister{err: errors.New("redis down")}
	sam := NewServiceAssignmentManager(lister, "poll-1", registry.PollServiceType, 0)
	sam.Refresh(context.Background())
	if ok, err := sam.IsResponsible(SamplerTaskKey); err != nil || !ok {
		t.Errorf("IsResponsible = %v, %v; want true, nil", ok, err)
	}
}

func TestEmptyRingIsAnError(t *testing.T) {
	sam := NewServiceAssignmentManager(&fakeLister{ids: []string{}}, "poll-1", registry.PollServiceType, 0)
	sam.Refresh(context.Background())
	if _, err := sam.IsResponsible(SamplerTaskKey); err == nil {
		t.Errorf("expected error for empty ring")
	}
}
