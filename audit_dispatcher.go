package goSession

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// auditDispatcher hands events to the sink on a single worker goroutine so Manager
// calls never wait on sink I/O. A nil dispatcher is valid and discards events.
type auditDispatcher struct {
	sink   AuditSink
	queue  chan AuditEvent
	block  bool
	logger *zap.Logger

	stop     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	dropped  atomic.Uint64
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink, logger *zap.Logger) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &auditDispatcher{
		sink:    sink,
		queue:   make(chan AuditEvent, max(cfg.BufferSize, 1)),
		block:   !cfg.DropIfFull,
		logger:  logger.Named("audit"),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *auditDispatcher) run() {
	defer close(d.stopped)

	for {
		select {
		case event := <-d.queue:
			d.deliver(event)
		case <-d.stop:
			// Flush what was accepted before Close.
			for {
				select {
				case event := <-d.queue:
					d.deliver(event)
				default:
					return
				}
			}
		}
	}
}

// deliver isolates the worker from a panicking sink; the event is lost, the worker
// keeps going.
func (d *auditDispatcher) deliver(event AuditEvent) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("audit sink panicked",
				zap.String("event", event.EventType),
				zap.Any("panic", r))
		}
	}()
	d.sink.Emit(context.Background(), event)
}

// Emit queues event. When the queue is full it either drops the event (DropIfFull) or
// waits for space, ctx cancellation or Close.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil || d.isStopped() {
		return
	}

	if !d.block {
		select {
		case d.queue <- event:
		default:
			d.drop(event)
		}
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case d.queue <- event:
	case <-ctx.Done():
		d.drop(event)
	case <-d.stop:
	}
}

// drop counts a lost event and warns on the 1st, 2nd, 4th, 8th... drop.
func (d *auditDispatcher) drop(event AuditEvent) {
	n := d.dropped.Add(1)
	if n&(n-1) == 0 {
		d.logger.Warn("audit event dropped",
			zap.String("event", event.EventType),
			zap.Uint64("dropped_total", n))
	}
}

func (d *auditDispatcher) isStopped() bool {
	select {
	case <-d.stop:
		return true
	default:
		return false
	}
}

// Close stops accepting events, flushes the queue and waits for the worker.
// Safe to call twice.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.stopOnce.Do(func() { close(d.stop) })
	<-d.stopped
}

// Dropped reports events lost to a full queue or a cancelled blocking Emit.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
