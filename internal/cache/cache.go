// Package cache is the portal's data-fetch layer: an in-memory store of
// backend reads keyed by request identity, with in-flight deduplication,
// staleness and change notifications.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"Mansoor88-6/timesheet-portal/internal/logger"

	"go.uber.org/zap"
)

// Key identifies one backend request as seen by one subject.
type Key string

// NewKey builds a key from the subject and request parts. Keys of the same
// subject share the prefix returned by SubjectPrefix.
func NewKey(subject string, parts ...string) Key {
	return Key(SubjectPrefix(subject) + strings.Join(parts, " "))
}

func SubjectPrefix(subject string) string {
	return subject + "|"
}

// Result mirrors what a page needs to decide between spinner, data and
// empty state.
type Result[T any] struct {
	Data      T
	IsLoading bool
	Err       error
}

// Fetcher performs the backend request behind a key.
type Fetcher[T any] func(ctx context.Context) (T, error)

type entry struct {
	value     any
	fetchedAt time.Time
}

type call struct {
	done  chan struct{}
	value any
	err   error
	// discard is set when the key is invalidated mid-flight; waiters still
	// get the value but it is not stored.
	discard bool
}

// Cache stores fetched values. Values younger than the stale time are
// served without refetching; values older than the gc time are evicted by
// the cleanup loop.
type Cache struct {
	mu       sync.Mutex
	entries  map[Key]*entry
	inflight map[Key]*call
	subs     map[Key]map[uint64]func(Key)
	nextSub  uint64

	staleTime    time.Duration
	gcTime       time.Duration
	fetchTimeout time.Duration
	now          func() time.Time
	logger       *zap.Logger

	stopChan  chan struct{}
	stopOnce  sync.Once
	cleanupWg sync.WaitGroup
}

type Options struct {
	StaleTime       time.Duration
	GCTime          time.Duration
	CleanupInterval time.Duration
	FetchTimeout    time.Duration
}

// New creates a cache and starts its cleanup loop when
// opts.CleanupInterval is positive.
func New(opts Options, logger *zap.Logger) *Cache {
	c := &Cache{
		entries:      make(map[Key]*entry),
		inflight:     make(map[Key]*call),
		subs:         make(map[Key]map[uint64]func(Key)),
		staleTime:    opts.StaleTime,
		gcTime:       opts.GCTime,
		fetchTimeout: opts.FetchTimeout,
		now:          time.Now,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}

	if opts.CleanupInterval > 0 {
		c.cleanupWg.Add(1)
		go c.cleanupLoop(opts.CleanupInterval)
	}

	return c
}

// Fetch returns the cached value for key when fresh, otherwise runs fn (or
// joins a request already in flight for key) and waits for it.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn Fetcher[T]) Result[T] {
	if v, ok := fresh[T](c, key); ok {
		return Result[T]{Data: v}
	}

	cl := c.begin(ctx, key, erase(fn))
	select {
	case <-cl.done:
		return settled[T](cl)
	case <-ctx.Done():
		return Result[T]{Err: ctx.Err()}
	}
}

// Load is Fetch with a deadline on waiting: if the request has not settled
// within wait, it reports IsLoading with any stale value still held, and
// the request keeps running in the background to fill the cache.
func Load[T any](ctx context.Context, c *Cache, key Key, fn Fetcher[T], wait time.Duration) Result[T] {
	if v, ok := fresh[T](c, key); ok {
		return Result[T]{Data: v}
	}

	cl := c.begin(ctx, key, erase(fn))

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-cl.done:
		return settled[T](cl)
	case <-timer.C:
		r := Peek[T](c, key)
		r.IsLoading = true
		return r
	case <-ctx.Done():
		return Result[T]{Err: ctx.Err()}
	}
}

// Peek reports what the cache holds for key without fetching. Stale
// values are returned as data.
func Peek[T any](c *Cache, key Key) Result[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	var r Result[T]
	if e, ok := c.entries[key]; ok {
		if v, ok := e.value.(T); ok {
			r.Data = v
		}
	}
	_, r.IsLoading = c.inflight[key]
	return r
}

// Set stores value under key as if it had just been fetched.
func Set[T any](c *Cache, key Key, value T) {
	c.mu.Lock()
	c.entries[key] = &entry{value: value, fetchedAt: c.now()}
	c.mu.Unlock()
	c.notify(key)
}

func erase[T any](fn Fetcher[T]) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		return fn(ctx)
	}
}

func fresh[T any](c *Cache, key Key) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.fetchedAt) >= c.staleTime {
		return zero, false
	}
	v, ok := e.value.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

func settled[T any](cl *call) Result[T] {
	if cl.err != nil {
		return Result[T]{Err: cl.err}
	}
	v, _ := cl.value.(T)
	return Result[T]{Data: v}
}

// begin returns the in-flight call for key, starting one if needed. The
// request runs detached from ctx's cancellation so one caller giving up
// does not fail the others sharing it.
func (c *Cache) begin(ctx context.Context, key Key, fn func(context.Context) (any, error)) *call {
	c.mu.Lock()
	if cl, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		return cl
	}
	// Another caller may have settled key since the freshness check
	if e, ok := c.entries[key]; ok && c.now().Sub(e.fetchedAt) < c.staleTime {
		c.mu.Unlock()
		cl := &call{done: make(chan struct{}), value: e.value}
		close(cl.done)
		return cl
	}
	cl := &call{done: make(chan struct{})}
	c.inflight[key] = cl
	c.mu.Unlock()

	fetchCtx := context.WithoutCancel(ctx)
	cancel := context.CancelFunc(func() {})
	if c.fetchTimeout > 0 {
		fetchCtx, cancel = context.WithTimeout(fetchCtx, c.fetchTimeout)
	}

	log := logger.FromContext(ctx, c.logger)

	go func() {
		defer cancel()
		started := c.now()
		value, err := fn(fetchCtx)
		c.settle(key, cl, value, err)

		if err != nil {
			log.Warn("Fetch failed",
				zap.String("key", string(key)),
				zap.Duration("duration", c.now().Sub(started)),
				zap.Error(err),
			)
			return
		}
		log.Debug("Fetch settled",
			zap.String("key", string(key)),
			zap.Duration("duration", c.now().Sub(started)),
		)
	}()

	return cl
}

func (c *Cache) settle(key Key, cl *call, value any, err error) {
	c.mu.Lock()
	delete(c.inflight, key)
	cl.value, cl.err = value, err
	// Errors are never cached
	if err == nil && !cl.discard {
		c.entries[key] = &entry{value: value, fetchedAt: c.now()}
	}
	c.mu.Unlock()

	// Subscribers observe the change before waiters resume
	c.notify(key)
	close(cl.done)
}

// Subscribe registers fn to be called with key whenever a fetch for key
// settles or key is invalidated or evicted. fn runs on the goroutine that
// caused the change and must not block. The returned func unsubscribes.
func (c *Cache) Subscribe(key Key, fn func(Key)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextSub++
	id := c.nextSub
	if c.subs[key] == nil {
		c.subs[key] = make(map[uint64]func(Key))
	}
	c.subs[key][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs[key], id)
			if len(c.subs[key]) == 0 {
				delete(c.subs, key)
			}
		})
	}
}

func (c *Cache) notify(key Key) {
	c.mu.Lock()
	fns := make([]func(Key), 0, len(c.subs[key]))
	for _, fn := range c.subs[key] {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
}

// Invalidate drops the cached value for key so the next read refetches.
// A fetch in flight for key settles without storing its value.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	_, existed := c.entries[key]
	delete(c.entries, key)
	if cl, ok := c.inflight[key]; ok {
		cl.discard = true
	}
	c.mu.Unlock()

	if existed {
		c.notify(key)
	}
}

// InvalidatePrefix drops every key starting with prefix.
func (c *Cache) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	var keys []Key
	for key := range c.entries {
		if strings.HasPrefix(string(key), prefix) {
			keys = append(keys, key)
			delete(c.entries, key)
		}
	}
	for key, cl := range c.inflight {
		if strings.HasPrefix(string(key), prefix) {
			cl.discard = true
		}
	}
	c.mu.Unlock()

	for _, key := range keys {
		c.notify(key)
	}
	return len(keys)
}

// Len returns the number of stored values.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) cleanupLoop(interval time.Duration) {
	defer c.cleanupWg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopChan:
			return
		}
	}
}

// cleanup evicts values older than the gc time
func (c *Cache) cleanup() {
	c.mu.Lock()
	now := c.now()
	var evicted []Key
	for key, e := range c.entries {
		if now.Sub(e.fetchedAt) > c.gcTime {
			delete(c.entries, key)
			evicted = append(evicted, key)
		}
	}
	c.mu.Unlock()

	for _, key := range evicted {
		c.notify(key)
	}

	if len(evicted) > 0 {
		c.logger.Debug("Evicted cached values",
			zap.Int("count", len(evicted)),
		)
	}
}

// Stop stops the cleanup goroutine
func (c *Cache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
	c.cleanupWg.Wait()
	c.logger.Info("Cache stopped")
}
