package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Janitor periodically deletes expired sessions from a Store.
type Janitor struct {
	store    Store
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewJanitor(store Store, interval time.Duration, logger *zap.Logger) *Janitor {
	return &Janitor{
		store:    store,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

func (j *Janitor) Start() {
	j.wg.Add(1)
	go j.loop()
}

func (j *Janitor) loop() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep(time.Now())
		case <-j.stopChan:
			return
		}
	}
}

func (j *Janitor) sweep(now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := j.store.DeleteExpired(ctx, now)
	if err != nil {
		j.logger.Error("Failed to sweep expired sessions", zap.Error(err))
		return
	}
	if n > 0 {
		j.logger.Debug("Swept expired sessions", zap.Int64("count", n))
	}
}

// Stop ends the sweep loop and waits for it to exit. Safe to call twice.
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() {
		close(j.stopChan)
	})
	j.wg.Wait()
	j.logger.Info("Session janitor stopped")
}
