// Package assoc keeps a set-valued relation from an identity to restaurant
// names, persisted in full after every change.
package assoc

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"theknife/internal/domain"
	"theknife/internal/pkg/metrics"
	"theknife/internal/pkg/serial"
)

var (
	// ErrPersist wraps store failures. Memory is left as it was before the call.
	ErrPersist = errors.New("persist_failed")

	// ErrHeld is returned by AddExclusive when another key holds the name.
	ErrHeld = errors.New("held_by_other")
)

type Store interface {
	Load(ctx context.Context) ([]domain.Association, error)
	Save(ctx context.Context, items []domain.Association) error
}

type Registry struct {
	name  string
	store Store
	queue *serial.Queue
	log   *zap.Logger

	mu   sync.RWMutex
	sets map[string]map[string]struct{}
}

// New returns an empty registry; call Load to read the store. name labels
// logs and metrics.
func New(name string, store Store, queue *serial.Queue, log *zap.Logger) *Registry {
	return &Registry{
		name:  name,
		store: store,
		queue: queue,
		log:   log.Named(name),
		sets:  make(map[string]map[string]struct{}),
	}
}

func (r *Registry) Load(ctx context.Context) error {
	items, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", r.name, err)
	}
	sets := make(map[string]map[string]struct{})
	for _, a := range items {
		if sets[a.Key] == nil {
			sets[a.Key] = make(map[string]struct{})
		}
		sets[a.Key][a.RestaurantName] = struct{}{}
	}
	r.mu.Lock()
	r.sets = sets
	r.mu.Unlock()
	r.log.Info("associations loaded", zap.Int("keys", len(sets)), zap.Int("rows", len(items)))
	return nil
}

// Add inserts (key, restaurant). It reports whether anything changed; adding an
// existing pair writes nothing.
func (r *Registry) Add(ctx context.Context, key, restaurant string) (bool, error) {
	var changed bool
	err := r.queue.Do(ctx, func() error {
		if r.Contains(key, restaurant) {
			return nil
		}
		if err := r.persist(ctx, func(sets map[string]map[string]struct{}) {
			if sets[key] == nil {
				sets[key] = make(map[string]struct{})
			}
			sets[key][restaurant] = struct{}{}
		}); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if changed {
		metrics.AssociationChanges.WithLabelValues(r.name, "add").Inc()
	}
	return changed, err
}

// AddExclusive is Add for names that may belong to one key only. The check and
// the write run in the same queued job, so two callers cannot both win.
func (r *Registry) AddExclusive(ctx context.Context, key, restaurant string) (bool, error) {
	var changed bool
	err := r.queue.Do(ctx, func() error {
		for _, other := range r.KeysOf(restaurant) {
			if other != key {
				return ErrHeld
			}
		}
		if r.Contains(key, restaurant) {
			return nil
		}
		if err := r.persist(ctx, func(sets map[string]map[string]struct{}) {
			if sets[key] == nil {
				sets[key] = make(map[string]struct{})
			}
			sets[key][restaurant] = struct{}{}
		}); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if changed {
		metrics.AssociationChanges.WithLabelValues(r.name, "add").Inc()
	}
	return changed, err
}

// Remove deletes (key, restaurant). Removing the last name drops the key.
// Removing a non-member is a no-op.
func (r *Registry) Remove(ctx context.Context, key, restaurant string) (bool, error) {
	var changed bool
	err := r.queue.Do(ctx, func() error {
		if !r.Contains(key, restaurant) {
			return nil
		}
		if err := r.persist(ctx, func(sets map[string]map[string]struct{}) {
			delete(sets[key], restaurant)
			if len(sets[key]) == 0 {
				delete(sets, key)
			}
		}); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if changed {
		metrics.AssociationChanges.WithLabelValues(r.name, "remove").Inc()
	}
	return changed, err
}

// Toggle flips membership and returns the new state.
func (r *Registry) Toggle(ctx context.Context, key, restaurant string) (bool, error) {
	var member bool
	err := r.queue.Do(ctx, func() error {
		want := !r.Contains(key, restaurant)
		if err := r.persist(ctx, func(sets map[string]map[string]struct{}) {
			if want {
				if sets[key] == nil {
					sets[key] = make(map[string]struct{})
				}
				sets[key][restaurant] = struct{}{}
				return
			}
			delete(sets[key], restaurant)
			if len(sets[key]) == 0 {
				delete(sets, key)
			}
		}); err != nil {
			return err
		}
		member = want
		return nil
	})
	if err == nil {
		metrics.AssociationChanges.WithLabelValues(r.name, "toggle").Inc()
	}
	return member, err
}

// persist applies mutate to a copy, saves the copy, and swaps it in only if
// the save succeeded. Callers run on the queue, so nothing else mutates
// between the copy and the swap.
func (r *Registry) persist(ctx context.Context, mutate func(map[string]map[string]struct{})) error {
	r.mu.RLock()
	next := copySets(r.sets)
	r.mu.RUnlock()

	mutate(next)

	if err := r.store.Save(ctx, flatten(next)); err != nil {
		metrics.PersistFailures.WithLabelValues(r.name).Inc()
		r.log.Error("save failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	r.mu.Lock()
	r.sets = next
	r.mu.Unlock()
	return nil
}

func (r *Registry) Contains(key, restaurant string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sets[key][restaurant]
	return ok
}

// Names returns a copy of the restaurant names held for key.
func (r *Registry) Names(key string) map[string]struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]struct{}, len(r.sets[key]))
	for n := range r.sets[key] {
		out[n] = struct{}{}
	}
	return out
}

func (r *Registry) Count(key string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sets[key])
}

// Keys lists every identity with at least one name, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sets))
	for k := range r.sets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// KeysOf lists, sorted, every identity holding restaurant.
func (r *Registry) KeysOf(restaurant string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for k, names := range r.sets {
		if _, ok := names[restaurant]; ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Snapshot returns every pair, sorted by key then name.
func (r *Registry) Snapshot() []domain.Association {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return flatten(r.sets)
}

func copySets(src map[string]map[string]struct{}) map[string]map[string]struct{} {
	dst := make(map[string]map[string]struct{}, len(src))
	for k, names := range src {
		cp := make(map[string]struct{}, len(names))
		for n := range names {
			cp[n] = struct{}{}
		}
		dst[k] = cp
	}
	return dst
}

func flatten(sets map[string]map[string]struct{}) []domain.Association {
	out := make([]domain.Association, 0, len(sets))
	for k, names := range sets {
		for n := range names {
			out = append(out, domain.Association{Key: k, RestaurantName: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].RestaurantName < out[j].RestaurantName
	})
	return out
}
