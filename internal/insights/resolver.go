package insights

import (
	"context"
	"fmt"
	"sync"

	"github.com/ignite/insight-stream/internal/graph"
	"github.com/ignite/insight-stream/internal/pkg/logger"
)

// resolveConcurrency caps in-flight name lookups during the one-time item
// resolution phase.
const resolveConcurrency = 3

// NameCache caches resolved item display names across runs. Implementations
// must treat backend failures as misses; a broken cache never fails a run.
type NameCache interface {
	Lookup(ctx context.Context, id string) (string, bool)
	Store(ctx context.Context, id, name string)
}

// Resolver turns configured item references into resolved Items by looking
// up each item's display name, with the per-item token override applied.
type Resolver struct {
	client       *graph.Client
	cache        NameCache
	defaultToken string
}

// NewResolver creates a resolver. cache may be nil.
func NewResolver(client *graph.Client, defaultToken string, cache NameCache) *Resolver {
	return &Resolver{client: client, cache: cache, defaultToken: defaultToken}
}

// Resolve resolves every reference, at most resolveConcurrency lookups in
// flight, preserving input order in the result. Any single failure fails
// the whole resolution; resolution is not subject to the run's error
// policy.
func (r *Resolver) Resolve(ctx context.Context, refs []ItemRef) ([]Item, error) {
	items := make([]Item, len(refs))
	sem := make(chan struct{}, resolveConcurrency)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref ItemRef) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			mu.Lock()
			failed := firstErr != nil
			mu.Unlock()
			if failed {
				return
			}

			item, err := r.resolveOne(ctx, ref)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("insights: resolving item %q: %w", ref.ID, err)
				}
				mu.Unlock()
				return
			}
			items[i] = item
		}(i, ref)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return items, nil
}

func (r *Resolver) resolveOne(ctx context.Context, ref ItemRef) (Item, error) {
	token := ref.Token
	if token == "" {
		token = r.defaultToken
	}

	if r.cache != nil {
		if name, ok := r.cache.Lookup(ctx, ref.ID); ok {
			logger.Debug("insights: name cache hit", "item", ref.ID)
			return Item{ID: ref.ID, Name: name, Token: token}, nil
		}
	}

	logger.Info("insights: resolving item name", "item", ref.ID)
	name, err := r.client.FetchName(ctx, ref.ID, token)
	if err != nil {
		return Item{}, err
	}

	if r.cache != nil {
		r.cache.Store(ctx, ref.ID, name)
	}
	return Item{ID: ref.ID, Name: name, Token: token}, nil
}
