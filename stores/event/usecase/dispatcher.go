package usecase

import (
	"context"
	"time"

	"github.com/viney-shih/goroutines"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/log"
	"github.com/x-xyz/musicnft/base/metrics"
	"github.com/x-xyz/musicnft/base/utils"
	"github.com/x-xyz/musicnft/domain/event"
)

const (
	defaultWorkers     = 16
	defaultQueueLength = 1024
	defaultTimeout     = 10 * time.Second
	scheduleTimeout    = time.Second
)

type DispatcherCfg struct {
	Subscribers []event.Subscriber
	Workers     int
	QueueLength int
	// Timeout bounds one subscriber notification
	Timeout time.Duration
}

// Dispatcher fans every event out to all subscribers on a worker pool
type Dispatcher struct {
	subscribers []event.Subscriber
	pool        *goroutines.Pool
	timeout     time.Duration
	met         metrics.Service
}

func NewDispatcher(cfg *DispatcherCfg) *Dispatcher {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	queueLength := cfg.QueueLength
	if queueLength <= 0 {
		queueLength = defaultQueueLength
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{
		subscribers: cfg.Subscribers,
		pool:        goroutines.NewPool(workers, goroutines.WithTaskQueueLength(queueLength)),
		timeout:     timeout,
		met:         metrics.New("event"),
	}
}

// Publish never blocks on subscribers. The request ctx is detached so a
// finished request doesn't cancel pending notifications.
func (d *Dispatcher) Publish(c ctx.Ctx, e *event.Event) {
	logger := c.Logger.WithFields(log.Fields{"event": e.Type, "tokenId": e.TokenId})
	for _, sub := range d.subscribers {
		sub := sub
		err := d.pool.ScheduleWithTimeout(scheduleTimeout, func() {
			d.notify(logger, sub, e)
		})
		if err != nil {
			d.met.BumpSum("schedule.err", 1, "subscriber", sub.Name())
			logger.WithFields(log.Fields{"subscriber": sub.Name(), "err": err}).Error("pool.ScheduleWithTimeout failed, event dropped")
		}
	}
}

func (d *Dispatcher) notify(logger log.Logger, sub event.Subscriber, e *event.Event) {
	defer d.met.BumpTime("notify.time", "subscriber", sub.Name(), "type", string(e.Type)).End()
	defer func() {
		if p := recover(); p != nil {
			logger.WithFields(log.Fields{
				"subscriber": sub.Name(),
				"err":        p,
				"stack":      string(utils.Stack(3)),
			}).Error("subscriber panic")
		}
	}()

	c, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := sub.Notify(ctx.From(c, logger), e); err != nil {
		d.met.BumpSum("notify.err", 1, "subscriber", sub.Name())
		logger.WithFields(log.Fields{"subscriber": sub.Name(), "err": err}).Error("subscriber.Notify failed")
	}
}

// Close waits for queued notifications and stops the workers
func (d *Dispatcher) Close() {
	d.pool.Release()
}
