package workers

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"quality-service/internal/services"
)

const (
	// DefaultUpdateInterval is the default interval for FX rate updates
	DefaultUpdateInterval = 6 * time.Hour

	// RetryInterval is the wait before retrying after a failed update
	RetryInterval = 5 * time.Minute
)

// RateUpdater refreshes cached FX rates in the background so finance
// reports never block on the upstream API.
type RateUpdater struct {
	fx            *services.FXService
	interval      time.Duration
	retryInterval time.Duration
	logger        *logrus.Logger
	stopChan      chan struct{}
	doneChan      chan struct{}
	mu            sync.Mutex
	running       bool
}

// NewRateUpdater creates a new rate updater
func NewRateUpdater(fx *services.FXService, interval time.Duration, logger *logrus.Logger) *RateUpdater {
	if interval == 0 {
		interval = DefaultUpdateInterval
	}
	return &RateUpdater{
		fx:            fx,
		interval:      interval,
		retryInterval: RetryInterval,
		logger:        logger,
		stopChan:      make(chan struct{}),
		doneChan:      make(chan struct{}),
	}
}

// Start begins the update loop
func (u *RateUpdater) Start() {
	u.mu.Lock()
	if u.running {
		u.mu.Unlock()
		return
	}
	u.running = true
	u.mu.Unlock()

	go u.run()
	u.logger.WithField("interval", u.interval.String()).Info("FX rate updater started")
}

// Stop terminates the update loop, including any pending retry, and waits
// for it to finish.
func (u *RateUpdater) Stop() {
	u.mu.Lock()
	if !u.running {
		u.mu.Unlock()
		return
	}
	u.running = false
	u.mu.Unlock()

	close(u.stopChan)
	<-u.doneChan
}

func (u *RateUpdater) run() {
	defer close(u.doneChan)

	// Retry timer, armed only after a failed update. Handling it inside the
	// select keeps retries on this goroutine, so Stop cancels them too.
	retry := time.NewTimer(u.retryInterval)
	if !retry.Stop() {
		<-retry.C
	}
	defer retry.Stop()

	// Initial fetch so reports have rates from the start
	u.update(retry)

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			u.update(retry)
		case <-retry.C:
			u.update(retry)
		case <-u.stopChan:
			return
		}
	}
}

func (u *RateUpdater) update(retry *time.Timer) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := u.fx.UpdateRates(ctx); err != nil {
		u.logger.WithError(err).Warn("FX rate update failed, will retry")
		retry.Reset(u.retryInterval)
		return
	}
	u.logger.Debug("FX rates refreshed")
}
