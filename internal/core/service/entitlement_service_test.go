package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fluxai/fluxgen/internal/core/domain"
)

func newTestEntitlementService(repo *stubProfileRepo, cache *stubCache, bus *recordingPublisher) *EntitlementService {
	svc := NewEntitlementService(repo, nil, nil, zerolog.Nop())
	if cache != nil {
		svc.cache = cache
	}
	if bus != nil {
		svc.bus = bus
	}
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestEntitlementService_Resolve_NilIdentity(t *testing.T) {
	repo := newStubProfileRepo()
	repo.getErr = errors.New("must not be called")
	svc := newTestEntitlementService(repo, nil, nil)

	state, err := svc.Resolve(context.Background(), nil)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if state.Authenticated || state.Record != nil {
		t.Fatalf("expected unauthenticated state, got %+v", state)
	}
	if repo.writes() != 0 {
		t.Fatalf("expected no store access, got %d writes", repo.writes())
	}
}

func TestEntitlementService_Resolve_CreatesUltimateRecord(t *testing.T) {
	repo := newStubProfileRepo()
	svc := newTestEntitlementService(repo, nil, nil)

	identity := &domain.UserIdentity{ID: "u1", Email: "a@x.com", DisplayName: "Ann"}
	state, err := svc.Resolve(context.Background(), identity)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !state.Authenticated || state.Record.SubscriptionTier != domain.TierUltimate {
		t.Fatalf("expected authenticated ultimate state, got %+v", state)
	}
	if repo.creates != 1 || repo.updates != 0 {
		t.Fatalf("expected exactly one create, got creates=%d updates=%d", repo.creates, repo.updates)
	}

	stored := repo.records["u1"]
	if stored == nil {
		t.Fatalf("record not stored")
	}
	if stored.Email != "a@x.com" || stored.DisplayName != "Ann" || stored.Role != domain.RoleMember {
		t.Fatalf("unexpected stored record: %+v", stored)
	}
	if stored.SubscriptionTier != domain.TierUltimate {
		t.Fatalf("expected ultimate tier, got %s", stored.SubscriptionTier)
	}
}

func TestEntitlementService_Resolve_UpgradesBasicRecord(t *testing.T) {
	repo := newStubProfileRepo()
	repo.records["u2"] = &domain.EntitlementRecord{ID: "u2", Email: "b@x.com", SubscriptionTier: domain.TierBasic, Role: domain.RoleMember}
	svc := newTestEntitlementService(repo, nil, nil)

	identity := &domain.UserIdentity{ID: "u2", Email: "b@x.com"}
	state, err := svc.Resolve(context.Background(), identity)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if state.Tier() != domain.TierUltimate {
		t.Fatalf("expected ultimate, got %s", state.Tier())
	}
	if repo.updates != 1 {
		t.Fatalf("expected one update, got %d", repo.updates)
	}

	if _, err := svc.Resolve(context.Background(), identity); err != nil {
		t.Fatalf("second Resolve returned error: %v", err)
	}
	if repo.writes() != 1 {
		t.Fatalf("second resolution must not write, got %d writes", repo.writes())
	}
	if repo.records["u2"].SubscriptionTier != domain.TierUltimate {
		t.Fatalf("stored tier not upgraded")
	}
}

func TestEntitlementService_Resolve_AtMostOneWritePerCall(t *testing.T) {
	repo := newStubProfileRepo()
	svc := newTestEntitlementService(repo, nil, nil)

	for i := 0; i < 5; i++ {
		identity := &domain.UserIdentity{ID: fmt.Sprintf("u%d", i), Email: fmt.Sprintf("u%d@x.com", i)}
		before := repo.writes()
		if _, err := svc.Resolve(context.Background(), identity); err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		if got := repo.writes() - before; got > 1 {
			t.Fatalf("resolution %d performed %d writes", i, got)
		}
	}
}

func TestEntitlementService_Resolve_ConcurrentConverges(t *testing.T) {
	repo := newStubProfileRepo()
	svc := newTestEntitlementService(repo, nil, nil)
	identity := &domain.UserIdentity{ID: "race", Email: "race@x.com"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, err := svc.Resolve(context.Background(), identity)
			if err != nil || state.Tier() != domain.TierUltimate {
				t.Errorf("unexpected resolution: %+v, %v", state, err)
			}
		}()
	}
	wg.Wait()

	if len(repo.records) != 1 {
		t.Fatalf("expected a single record, got %d", len(repo.records))
	}
	if repo.records["race"].SubscriptionTier != domain.TierUltimate {
		t.Fatalf("expected ultimate tier")
	}
}

func TestEntitlementService_Resolve_StoreUnavailable(t *testing.T) {
	repo := newStubProfileRepo()
	repo.getErr = fmt.Errorf("%w: connection refused", domain.ErrStoreUnavailable)
	svc := newTestEntitlementService(repo, nil, nil)

	state, err := svc.Resolve(context.Background(), &domain.UserIdentity{ID: "u3"})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if state.Authenticated {
		t.Fatalf("failed resolution must not grant access")
	}
	if repo.gets != 2 {
		t.Fatalf("expected one retried read, got %d reads", repo.gets)
	}
}

func TestEntitlementService_Resolve_RetriesReadOnce(t *testing.T) {
	repo := newStubProfileRepo()
	repo.records["u3"] = &domain.EntitlementRecord{ID: "u3", SubscriptionTier: domain.TierUltimate}
	repo.getErrs = []error{fmt.Errorf("%w: primary stepped down", domain.ErrStoreUnavailable)}
	svc := newTestEntitlementService(repo, nil, nil)

	state, err := svc.Resolve(context.Background(), &domain.UserIdentity{ID: "u3"})
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if state.Tier() != domain.TierUltimate {
		t.Fatalf("expected ultimate after retry")
	}
	if repo.gets != 2 {
		t.Fatalf("expected 2 reads, got %d", repo.gets)
	}
	if repo.writes() != 0 {
		t.Fatalf("expected no writes, got %d", repo.writes())
	}
}

func TestEntitlementService_Resolve_NotFoundIsNotRetried(t *testing.T) {
	repo := newStubProfileRepo()
	svc := newTestEntitlementService(repo, nil, nil)

	if _, err := svc.Resolve(context.Background(), &domain.UserIdentity{ID: "fresh"}); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if repo.gets != 1 {
		t.Fatalf("expected a single read, got %d", repo.gets)
	}
}

func TestEntitlementService_Resolve_RetriesCreateOnce(t *testing.T) {
	repo := newStubProfileRepo()
	repo.setErrs = []error{domain.ErrStoreUnavailable}
	svc := newTestEntitlementService(repo, nil, nil)

	state, err := svc.Resolve(context.Background(), &domain.UserIdentity{ID: "u4"})
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if state.Tier() != domain.TierUltimate {
		t.Fatalf("expected ultimate after retry")
	}
}

func TestEntitlementService_Resolve_CreateFailsTwice(t *testing.T) {
	repo := newStubProfileRepo()
	repo.setErrs = []error{domain.ErrStoreUnavailable, domain.ErrStoreUnavailable}
	svc := newTestEntitlementService(repo, nil, nil)

	state, err := svc.Resolve(context.Background(), &domain.UserIdentity{ID: "u5"})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if state.Authenticated {
		t.Fatalf("expected unauthenticated state")
	}
	if len(repo.records) != 0 {
		t.Fatalf("expected no record stored")
	}
}

func TestEntitlementService_Resolve_UsesCacheForUltimate(t *testing.T) {
	repo := newStubProfileRepo()
	repo.getErr = errors.New("store should not be read")
	cache := newStubCache()
	cache.records["u6"] = &domain.EntitlementRecord{ID: "u6", SubscriptionTier: domain.TierUltimate}
	svc := newTestEntitlementService(repo, cache, nil)

	state, err := svc.Resolve(context.Background(), &domain.UserIdentity{ID: "u6"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if state.Tier() != domain.TierUltimate {
		t.Fatalf("expected cached ultimate state")
	}
}

func TestEntitlementService_Resolve_IgnoresCachedBasic(t *testing.T) {
	repo := newStubProfileRepo()
	repo.records["u7"] = &domain.EntitlementRecord{ID: "u7", SubscriptionTier: domain.TierBasic}
	cache := newStubCache()
	cache.records["u7"] = &domain.EntitlementRecord{ID: "u7", SubscriptionTier: domain.TierBasic}
	svc := newTestEntitlementService(repo, cache, nil)

	if _, err := svc.Resolve(context.Background(), &domain.UserIdentity{ID: "u7"}); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if repo.updates != 1 {
		t.Fatalf("expected the store record to be upgraded")
	}
	if cache.records["u7"].SubscriptionTier != domain.TierUltimate {
		t.Fatalf("expected cache refreshed with ultimate record")
	}
}

func TestEntitlementService_Resolve_Publishes(t *testing.T) {
	bus := &recordingPublisher{}
	svc := newTestEntitlementService(newStubProfileRepo(), nil, bus)

	if _, err := svc.Resolve(context.Background(), &domain.UserIdentity{ID: "u8"}); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(bus.changes) != 1 {
		t.Fatalf("expected one published change, got %d", len(bus.changes))
	}
	if bus.changes[0].UserID != "u8" || !bus.changes[0].State.Authenticated {
		t.Fatalf("unexpected change: %+v", bus.changes[0])
	}
}
