package knowledge

import (
	"context"
	"fmt"
	"sync/atomic"

	"inciq/pkg/logger"
	"inciq/pkg/store"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Provider owns the process-wide cached graph. It starts empty, populates on
// first use or an explicit rebuild, and swaps in rebuilt graphs atomically so
// readers mid-flight keep their snapshot. Concurrent rebuild triggers are
// coalesced into a single build.
type Provider struct {
	store   store.CatalogStore
	current atomic.Pointer[Graph]
	group   singleflight.Group
}

func NewProvider(s store.CatalogStore) *Provider {
	return &Provider{store: s}
}

// Get returns the cached graph, building it first if none exists yet.
func (p *Provider) Get(ctx context.Context) (*Graph, error) {
	if g := p.current.Load(); g != nil {
		return g, nil
	}
	return p.Rebuild(ctx, false)
}

// Current returns the cached graph without triggering a build; nil when no
// build has succeeded yet.
func (p *Provider) Current() *Graph {
	return p.current.Load()
}

// Rebuild builds a graph from a fresh store snapshot and swaps it in. With
// force false an existing cached graph is returned as-is. A failed build
// returns the error and leaves the cached graph untouched, so stale data
// keeps serving until the store recovers.
func (p *Provider) Rebuild(ctx context.Context, force bool) (*Graph, error) {
	if !force {
		if g := p.current.Load(); g != nil {
			return g, nil
		}
	}

	v, err, shared := p.group.Do("rebuild", func() (any, error) {
		snap, err := p.snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog snapshot: %w", err)
		}

		g := Build(snap)
		p.current.Store(g)

		stats := g.Stats()
		logger.Info("[Graph] Build completed",
			"ingredients", stats.Nodes[string(KindIngredient)],
			"branded", stats.Nodes[string(KindBranded)],
			"contains_edges", stats.Edges[string(EdgeContains)],
		)
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debug("[Graph] Rebuild coalesced with concurrent build")
	}
	return v.(*Graph), nil
}

// snapshot reads all five collections in parallel, mirroring the point-in-
// time read the graph build contract expects.
func (p *Provider) snapshot(ctx context.Context) (store.Snapshot, error) {
	var snap store.Snapshot

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		snap.Ingredients, err = p.store.ListIngredients(ctx)
		return err
	})
	eg.Go(func() error {
		var err error
		snap.Branded, err = p.store.ListBranded(ctx)
		return err
	})
	eg.Go(func() error {
		var err error
		snap.Suppliers, err = p.store.ListSuppliers(ctx)
		return err
	})
	eg.Go(func() error {
		var err error
		snap.FunctionalCategories, err = p.store.ListFunctionalCategories(ctx)
		return err
	})
	eg.Go(func() error {
		var err error
		snap.ChemicalClasses, err = p.store.ListChemicalClasses(ctx)
		return err
	})

	if err := eg.Wait(); err != nil {
		return store.Snapshot{}, err
	}
	return snap, nil
}
