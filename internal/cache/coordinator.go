// Package cache coordinates computed search results per fingerprint: a
// freshness-bounded local store with LRU capacity, at-most-one concurrent
// computation per key via singleflight, and an optional remote mirror for
// READY entries.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/AdamSoufiane/connectsearch/internal/models"
)

type State string

const (
	StatePending State = "PENDING"
	StateReady   State = "READY"
)

// EntrySnapshot is the immutable view of a cache entry handed to callers.
// The coordinator owns the live entries; snapshots are never written back.
type EntrySnapshot struct {
	Fingerprint   string             `json:"fingerprint"`
	Itineraries   []models.Itinerary `json:"itineraries"`
	ComputedAt    time.Time          `json:"computed_at"`
	ExpiresAt     time.Time          `json:"expires_at"`
	State         State              `json:"state"`
	Authoritative bool               `json:"authoritative"`
}

// Computed is what a compute function produces. Authoritative=false marks
// results calculated while schedule ingestion was still running; they get
// the shorter freshness window.
type Computed struct {
	Itineraries   []models.Itinerary
	Authoritative bool
}

type ComputeFunc func(ctx context.Context) (Computed, error)

type Config struct {
	TTL time.Duration
	// IncompleteTTL applies to non-authoritative results. Zero means TTL.
	IncompleteTTL time.Duration
	// MaxEntries caps the local store, evicting least-recently-used READY
	// entries. Zero means unbounded.
	MaxEntries int
	Remote     RemoteStore
}

func DefaultConfig() Config {
	return Config{
		TTL:           5 * time.Minute,
		IncompleteTTL: 30 * time.Second,
		MaxEntries:    10000,
		Remote:        NewNoOpStore(),
	}
}

type entry struct {
	snap EntrySnapshot
	elem *list.Element
}

type Coordinator struct {
	mu      sync.Mutex
	entries map[string]*entry
	order   *list.List // LRU order, front = most recent; values are fingerprints
	pending map[string]bool
	gen     map[string]uint64
	sf      singleflight.Group
	cfg     Config
}

func NewCoordinator(cfg Config) *Coordinator {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.IncompleteTTL <= 0 {
		cfg.IncompleteTTL = cfg.TTL
	}
	if cfg.Remote == nil {
		cfg.Remote = NewNoOpStore()
	}
	return &Coordinator{
		entries: make(map[string]*entry),
		order:   list.New(),
		pending: make(map[string]bool),
		gen:     make(map[string]uint64),
		cfg:     cfg,
	}
}

// Lookup returns the current entry for the fingerprint: a READY snapshot if
// fresh, a PENDING marker while a computation is in flight, absent otherwise.
func (c *Coordinator) Lookup(fp string) (EntrySnapshot, bool) {
	if snap, ok := c.getReady(fp); ok {
		return snap, true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending[fp] {
		return EntrySnapshot{Fingerprint: fp, State: StatePending}, true
	}
	return EntrySnapshot{}, false
}

// GetOrCompute returns the fresh entry for the fingerprint, computing it at
// most once no matter how many callers arrive concurrently. The bool result
// reports a cache hit. A caller whose context is cancelled while waiting
// abandons the wait; the shared computation keeps running for the others.
func (c *Coordinator) GetOrCompute(ctx context.Context, fp string, fn ComputeFunc) (EntrySnapshot, bool, error) {
	if snap, ok := c.getReady(fp); ok {
		return snap, true, nil
	}

	gen := c.generation(fp)
	ch := c.sf.DoChan(fp, func() (any, error) {
		c.setPending(fp, true)
		defer c.setPending(fp, false)

		// another flight may have finished between the miss and this one
		if snap, ok := c.getReady(fp); ok {
			return snap, nil
		}

		// the computation must outlive the caller that started it
		bg := context.WithoutCancel(ctx)

		if snap, ok := c.cfg.Remote.Get(bg, fp); ok && time.Now().Before(snap.ExpiresAt) {
			c.insert(fp, gen, snap, false)
			return snap, nil
		}

		res, err := fn(bg)
		if err != nil {
			return nil, err
		}
		return c.store(fp, gen, res), nil
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return EntrySnapshot{}, false, r.Err
		}
		return r.Val.(EntrySnapshot), false, nil
	case <-ctx.Done():
		return EntrySnapshot{}, false, ctx.Err()
	}
}

// Invalidate removes the entry unconditionally. A computation already in
// flight finishes but its result is discarded instead of stored.
func (c *Coordinator) Invalidate(ctx context.Context, fp string) error {
	c.mu.Lock()
	c.gen[fp]++
	c.removeLocked(fp)
	c.mu.Unlock()

	c.sf.Forget(fp)
	return c.cfg.Remote.Delete(ctx, fp)
}

// Refresh recomputes regardless of current freshness and swaps the entry
// atomically; readers keep being served the old entry until the new one is
// stored.
func (c *Coordinator) Refresh(ctx context.Context, fp string, fn ComputeFunc) (EntrySnapshot, error) {
	gen := c.generation(fp)
	ch := c.sf.DoChan(fp, func() (any, error) {
		c.setPending(fp, true)
		defer c.setPending(fp, false)

		res, err := fn(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		return c.store(fp, gen, res), nil
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return EntrySnapshot{}, r.Err
		}
		return r.Val.(EntrySnapshot), nil
	case <-ctx.Done():
		return EntrySnapshot{}, ctx.Err()
	}
}

// Start runs periodic expiry cleanup until the context is cancelled.
func (c *Coordinator) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.CleanUp()
			}
		}
	}()
}

// CleanUp drops every expired entry.
func (c *Coordinator) CleanUp() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for fp, e := range c.entries {
		if !now.Before(e.snap.ExpiresAt) {
			c.removeLocked(fp)
		}
	}
}

// Len reports the number of READY entries currently stored.
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Coordinator) getReady(fp string) (EntrySnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[fp]
	if !ok {
		return EntrySnapshot{}, false
	}
	if !time.Now().Before(e.snap.ExpiresAt) {
		c.removeLocked(fp)
		return EntrySnapshot{}, false
	}
	c.order.MoveToFront(e.elem)
	return e.snap, true
}

func (c *Coordinator) store(fp string, gen uint64, res Computed) EntrySnapshot {
	now := time.Now()
	ttl := c.cfg.TTL
	if !res.Authoritative {
		ttl = c.cfg.IncompleteTTL
	}
	snap := EntrySnapshot{
		Fingerprint:   fp,
		Itineraries:   res.Itineraries,
		ComputedAt:    now,
		ExpiresAt:     now.Add(ttl),
		State:         StateReady,
		Authoritative: res.Authoritative,
	}
	c.insert(fp, gen, snap, true)
	return snap
}

// insert stores the snapshot unless the fingerprint was invalidated after
// gen was captured; a stale generation means the result is discarded but
// still returned to the waiters that shared the computation.
func (c *Coordinator) insert(fp string, gen uint64, snap EntrySnapshot, mirror bool) {
	c.mu.Lock()
	if c.gen[fp] != gen {
		c.mu.Unlock()
		return
	}
	if e, ok := c.entries[fp]; ok {
		e.snap = snap
		c.order.MoveToFront(e.elem)
	} else {
		c.entries[fp] = &entry{snap: snap, elem: c.order.PushFront(fp)}
	}
	c.evictLocked()
	c.mu.Unlock()

	if mirror {
		_ = c.cfg.Remote.Set(context.Background(), fp, snap)
	}
}

// evictLocked trims least-recently-used entries past the capacity bound.
// PENDING computations are tracked outside the entry map and are never
// eviction candidates.
func (c *Coordinator) evictLocked() {
	if c.cfg.MaxEntries <= 0 {
		return
	}
	for len(c.entries) > c.cfg.MaxEntries {
		back := c.order.Back()
		if back == nil {
			return
		}
		c.removeLocked(back.Value.(string))
	}
}

func (c *Coordinator) removeLocked(fp string) {
	if e, ok := c.entries[fp]; ok {
		c.order.Remove(e.elem)
		delete(c.entries, fp)
	}
}

func (c *Coordinator) generation(fp string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen[fp]
}

func (c *Coordinator) setPending(fp string, v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v {
		c.pending[fp] = true
	} else {
		delete(c.pending, fp)
	}
}
