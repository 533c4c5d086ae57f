// Package analytics ships search telemetry to Kafka off the request path.
package analytics

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vkusplato/menu-search/pkg/kafka"
	"github.com/vkusplato/menu-search/pkg/logger"
)

const defaultBufferSize = 1024

// Publisher is the slice of the Kafka producer the collector uses.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// Collector buffers search events and publishes them asynchronously, so a
// slow or unreachable broker never delays a search response. When the buffer
// fills, new events are dropped and counted. A nil *Collector discards all
// events, which keeps the service usable without Kafka.
type Collector struct {
	producer Publisher
	events   chan SearchEvent
	dropped  atomic.Int64
	wg       sync.WaitGroup
	logger   *slog.Logger

	closeOnce sync.Once
}

// NewCollector starts a Collector draining into producer.
func NewCollector(producer Publisher) *Collector {
	c := &Collector{
		producer: producer,
		events:   make(chan SearchEvent, defaultBufferSize),
		logger:   logger.WithComponent("analytics"),
	}
	c.wg.Add(1)
	go c.drain()
	return c
}

// Record enqueues an event without blocking.
func (c *Collector) Record(event SearchEvent) {
	if c == nil {
		return
	}
	select {
	case c.events <- event:
	default:
		if c.dropped.Add(1)%100 == 1 {
			c.logger.Warn("analytics buffer full, dropping events",
				"dropped_total", c.dropped.Load())
		}
	}
}

// Dropped returns how many events have been discarded since startup.
func (c *Collector) Dropped() int64 {
	if c == nil {
		return 0
	}
	return c.dropped.Load()
}

// Close stops intake, flushes buffered events, and waits for the drain
// goroutine to finish.
func (c *Collector) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() { close(c.events) })
	c.wg.Wait()
}

func (c *Collector) drain() {
	defer c.wg.Done()
	for event := range c.events {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := c.producer.Publish(ctx, kafka.Event{
			Key:   event.NormalizedQuery,
			Value: event,
		})
		cancel()
		if err != nil {
			c.logger.Warn("failed to publish search event",
				"query", event.NormalizedQuery,
				"error", err)
		}
	}
}
