// =============================================================================
// Missouri Lobbying Ledger - Entity Resolver
// =============================================================================
//
// Maps the names found in expenditure rows onto store entities.
//
//   Lobbyist     get-or-create on exact (first, last)
//   Group        get-or-create on exact name
//   Legislator   strict lookup on ethics name, office breaks ties; never creates
//   Organization raw name -> canonical name through the lookup table, then
//                strict lookup; never creates
//
// Results are cached per run. Every method holds the resolver's lock for the
// whole lookup-then-create sequence, so one identity is created at most once
// even if rows were resolved in parallel.
//
// =============================================================================

package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ginjaninja78/missouri-lobbying/internal/store"
	"github.com/ginjaninja78/missouri-lobbying/internal/types"
)

var (
	// ErrUnknownOrganization is returned when a raw principal name is not in
	// the lookup table, or its canonical organization is not in the store.
	ErrUnknownOrganization = errors.New("unknown organization")

	// ErrUnknownLegislator is returned when no sitting legislator matches.
	ErrUnknownLegislator = errors.New("unknown legislator")
)

// Store is the subset of the store used by the resolver.
type Store interface {
	FindOrCreateLobbyist(ctx context.Context, first, last string) (*store.Lobbyist, bool, error)
	FindOrCreateGroup(ctx context.Context, name string) (*store.Group, bool, error)
	FindLegislator(ctx context.Context, ethicsName string, office types.Office) (*store.Legislator, error)
	FindOrganization(ctx context.Context, name string) (*store.Organization, error)
}

// Canonicalizer maps raw organization names onto canonical names.
type Canonicalizer interface {
	Canonical(raw string) (string, bool)
}

type legislatorKey struct {
	ethicsName string
	office     types.Office
}

type lobbyistKey struct {
	first, last string
}

// Resolver resolves names for one run.
type Resolver struct {
	store Store
	names Canonicalizer

	mu            sync.Mutex
	lobbyists     map[lobbyistKey]*store.Lobbyist
	groups        map[string]*store.Group
	legislators   map[legislatorKey]*store.Legislator
	missing       map[legislatorKey]bool
	organizations map[string]*store.Organization
}

// New creates a resolver over st using names for organization
// canonicalization.
func New(st Store, names Canonicalizer) *Resolver {
	return &Resolver{
		store:         st,
		names:         names,
		lobbyists:     make(map[lobbyistKey]*store.Lobbyist),
		groups:        make(map[string]*store.Group),
		legislators:   make(map[legislatorKey]*store.Legislator),
		missing:       make(map[legislatorKey]bool),
		organizations: make(map[string]*store.Organization),
	}
}

// Lobbyist returns the lobbyist with this exact name, creating it if needed.
func (r *Resolver) Lobbyist(ctx context.Context, first, last string) (*store.Lobbyist, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := lobbyistKey{first, last}
	if l, ok := r.lobbyists[key]; ok {
		return l, false, nil
	}

	l, created, err := r.store.FindOrCreateLobbyist(ctx, first, last)
	if err != nil {
		return nil, false, err
	}
	r.lobbyists[key] = l
	return l, created, nil
}

// Group returns the group with this exact name, creating it if needed.
func (r *Resolver) Group(ctx context.Context, name string) (*store.Group, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.groups[name]; ok {
		return g, false, nil
	}

	g, created, err := r.store.FindOrCreateGroup(ctx, name)
	if err != nil {
		return nil, false, err
	}
	r.groups[name] = g
	return g, created, nil
}

// Legislator looks up a sitting legislator. A miss returns
// ErrUnknownLegislator and is remembered for the rest of the run.
func (r *Resolver) Legislator(ctx context.Context, ethicsName string, office types.Office) (*store.Legislator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := legislatorKey{ethicsName, office}
	if l, ok := r.legislators[key]; ok {
		return l, nil
	}
	if r.missing[key] {
		return nil, fmt.Errorf("%w: %s %q", ErrUnknownLegislator, office, ethicsName)
	}

	l, err := r.store.FindLegislator(ctx, ethicsName, office)
	if errors.Is(err, store.ErrNotFound) {
		r.missing[key] = true
		return nil, fmt.Errorf("%w: %s %q", ErrUnknownLegislator, office, ethicsName)
	}
	if err != nil {
		return nil, err
	}
	r.legislators[key] = l
	return l, nil
}

// Organization resolves a raw principal name through the canonicalization
// table. Two raw names with the same canonical name resolve to the same
// entity.
func (r *Resolver) Organization(ctx context.Context, raw string) (*store.Organization, error) {
	canonical, ok := r.names.Canonical(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not in the lookup table", ErrUnknownOrganization, raw)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if o, ok := r.organizations[canonical]; ok {
		return o, nil
	}

	o, err := r.store.FindOrganization(ctx, canonical)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: canonical name %q is not loaded", ErrUnknownOrganization, canonical)
	}
	if err != nil {
		return nil, err
	}
	r.organizations[canonical] = o
	return o, nil
}
