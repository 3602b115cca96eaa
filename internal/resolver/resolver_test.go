package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ginjaninja78/missouri-lobbying/internal/store"
	"github.com/ginjaninja78/missouri-lobbying/internal/types"
)

// fakeStore is an in-memory Store that counts calls.
type fakeStore struct {
	mu          sync.Mutex
	nextID      uint
	lobbyists   map[lobbyistKey]*store.Lobbyist
	groups      map[string]*store.Group
	legislators map[legislatorKey]*store.Legislator
	orgs        map[string]*store.Organization
	calls       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lobbyists:   make(map[lobbyistKey]*store.Lobbyist),
		groups:      make(map[string]*store.Group),
		legislators: make(map[legislatorKey]*store.Legislator),
		orgs:        make(map[string]*store.Organization),
	}
}

func (f *fakeStore) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) FindOrCreateLobbyist(_ context.Context, first, last string) (*store.Lobbyist, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	key := lobbyistKey{first, last}
	if l, ok := f.lobbyists[key]; ok {
		return l, false, nil
	}
	l := &store.Lobbyist{ID: f.id(), FirstName: first, LastName: last}
	f.lobbyists[key] = l
	return l, true, nil
}

func (f *fakeStore) FindOrCreateGroup(_ context.Context, name string) (*store.Group, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if g, ok := f.groups[name]; ok {
		return g, false, nil
	}
	g := &store.Group{ID: f.id(), Name: name}
	f.groups[name] = g
	return g, true, nil
}

func (f *fakeStore) FindLegislator(_ context.Context, ethicsName string, office types.Office) (*store.Legislator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if l, ok := f.legislators[legislatorKey{ethicsName, office}]; ok {
		return l, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) FindOrganization(_ context.Context, name string) (*store.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if o, ok := f.orgs[name]; ok {
		return o, nil
	}
	return nil, store.ErrNotFound
}

type mapNames map[string]string

func (m mapNames) Canonical(raw string) (string, bool) {
	name, ok := m[raw]
	return name, ok
}

func TestLobbyist_CreatesOnce(t *testing.T) {
	fs := newFakeStore()
	r := New(fs, mapNames{})
	ctx := context.Background()

	first, created, err := r.Lobbyist(ctx, "Jane", "Doe")
	if err != nil || !created {
		t.Fatalf("first: created=%v err=%v", created, err)
	}
	again, created, err := r.Lobbyist(ctx, "Jane", "Doe")
	if err != nil || created || again != first {
		t.Fatalf("second: %p vs %p created=%v err=%v", again, first, created, err)
	}
	if fs.calls != 1 {
		t.Errorf("store calls = %d, want 1 (cached)", fs.calls)
	}
}

func TestGroup_Concurrent(t *testing.T) {
	fs := newFakeStore()
	r := New(fs, mapNames{})
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	createdCount := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := r.Group(ctx, "House Budget Committee")
			if err != nil {
				t.Error(err)
				return
			}
			if created {
				mu.Lock()
				createdCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if createdCount != 1 || len(fs.groups) != 1 {
		t.Errorf("created %d times, %d groups stored; want exactly one", createdCount, len(fs.groups))
	}
}

func TestLegislator(t *testing.T) {
	fs := newFakeStore()
	smith := &store.Legislator{ID: 7, EthicsName: "SMITH, JANE", Office: types.OfficeSenator}
	fs.legislators[legislatorKey{"SMITH, JANE", types.OfficeSenator}] = smith
	r := New(fs, mapNames{})
	ctx := context.Background()

	got, err := r.Legislator(ctx, "SMITH, JANE", types.OfficeSenator)
	if err != nil || got != smith {
		t.Fatalf("Legislator() = %v, %v", got, err)
	}

	for i := 0; i < 2; i++ {
		if _, err := r.Legislator(ctx, "GONE, FORMER", types.OfficeRepresentative); !errors.Is(err, ErrUnknownLegislator) {
			t.Fatalf("miss error = %v, want ErrUnknownLegislator", err)
		}
	}
	// One hit plus one remembered miss.
	if fs.calls != 2 {
		t.Errorf("store calls = %d, want 2", fs.calls)
	}
}

func TestOrganization(t *testing.T) {
	fs := newFakeStore()
	acme := &store.Organization{ID: 3, Name: "ACME CORPORATION"}
	fs.orgs["ACME CORPORATION"] = acme
	names := mapNames{
		"Acme Corp":  "ACME CORPORATION",
		"ACME CORP.": "ACME CORPORATION",
		"Ghost Corp": "GHOST CORPORATION",
	}
	r := New(fs, names)
	ctx := context.Background()

	a, err := r.Organization(ctx, "Acme Corp")
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Organization(ctx, "ACME CORP.")
	if err != nil {
		t.Fatal(err)
	}
	if a != acme || b != acme {
		t.Errorf("raw variants resolved to different entities: %p %p", a, b)
	}

	tests := []string{"Nobody LLC", "Ghost Corp"}
	for _, raw := range tests {
		if _, err := r.Organization(ctx, raw); !errors.Is(err, ErrUnknownOrganization) {
			t.Errorf("Organization(%q) error = %v, want ErrUnknownOrganization", raw, err)
		}
	}
	if len(fs.orgs) != 1 {
		t.Error("resolver must never create organizations")
	}
}
