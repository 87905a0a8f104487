// internal/app/system/livewatch/livewatch.go
//
// Live update plumbing: a Subscription is an explicit handle over a
// stream of events that consumers must Close when done, and a Hub fans
// one upstream subscription out to many consumers per key, opening the
// upstream lazily and closing it when the last consumer leaves.
package livewatch

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Subscription delivers events of type T until Close is called or the
// source ends. After the Events channel is closed, Err reports why.
type Subscription[T any] struct {
	events chan T
	cancel context.CancelFunc

	mu     sync.Mutex
	err    error
	closed bool
}

// Events returns the delivery channel. It is closed when the
// subscription ends for any reason.
func (s *Subscription[T]) Events() <-chan T { return s.events }

// Err returns the terminal error, if any, once Events is closed. A nil
// error means the subscription was closed deliberately.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops delivery and releases the underlying source. Safe to call
// more than once and safe to call concurrently with event delivery.
func (s *Subscription[T]) Close() {
	s.mu.Lock()
	already := s.closed
	s.closed = true
	s.mu.Unlock()
	if already {
		return
	}
	s.cancel()
	// Drain so the producer goroutine can finish its pending send and
	// close the channel.
	go func() {
		for range s.events {
		}
	}()
}

func (s *Subscription[T]) fail(err error) {
	s.mu.Lock()
	if !s.closed && s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}

// NewFromChannel wraps an existing event channel in a Subscription.
// Used by tests and by the Hub; stop is invoked once on Close.
func NewFromChannel[T any](src <-chan T, stop func()) *Subscription[T] {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &Subscription[T]{
		events: make(chan T),
		cancel: cancel,
	}
	go func() {
		defer close(sub.events)
		defer func() {
			if stop != nil {
				stop()
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-src:
				if !ok {
					return
				}
				select {
				case <-ctx.Done():
					return
				case sub.events <- ev:
				}
			}
		}
	}()
	return sub
}

// WatchChangeStream runs a Mongo change stream and decodes each change
// into a T. Decode returning ok=false skips the change (e.g. a delete
// the consumer does not care about). The stream is closed when the
// returned Subscription is.
func WatchChangeStream[T any](ctx context.Context, cs *mongo.ChangeStream, decode func(*mongo.ChangeStream) (T, bool), log *zap.Logger) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		events: make(chan T),
		cancel: cancel,
	}
	go func() {
		defer close(sub.events)
		defer func() {
			closeCtx, closeCancel := context.WithCancel(context.Background())
			defer closeCancel()
			if err := cs.Close(closeCtx); err != nil {
				log.Debug("change stream close", zap.Error(err))
			}
		}()
		for cs.Next(ctx) {
			ev, ok := decode(cs)
			if !ok {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case sub.events <- ev:
			}
		}
		if err := cs.Err(); err != nil && ctx.Err() == nil {
			log.Warn("change stream ended", zap.Error(err))
			sub.fail(err)
		}
	}()
	return sub
}

// OpenFunc opens the upstream subscription for a key. The context it
// receives carries the first subscriber's values but not its
// cancelation; the upstream ends only through the returned
// Subscription's Close.
type OpenFunc[T any] func(ctx context.Context, key string) (*Subscription[T], error)

// Hub fans a per-key upstream subscription out to many consumers. The
// upstream is opened when the first consumer subscribes to a key and
// closed when the last one unsubscribes.
type Hub[T any] struct {
	open OpenFunc[T]
	log  *zap.Logger

	mu    sync.Mutex
	rooms map[string]*room[T]
}

type room[T any] struct {
	upstream *Subscription[T]
	members  map[chan T]struct{}
}

func NewHub[T any](open OpenFunc[T], log *zap.Logger) *Hub[T] {
	return &Hub[T]{
		open:  open,
		log:   log,
		rooms: make(map[string]*room[T]),
	}
}

// Subscribe registers a consumer for a key. The returned Subscription
// must be Closed when the consumer is done; slow consumers have events
// dropped rather than stalling the room.
//
// The room owns the upstream, not the subscriber that happened to open
// it: the OpenFunc context is detached from the caller's cancelation,
// so one consumer disconnecting never tears the stream down for the
// rest. The upstream is closed only when the last member unsubscribes.
func (h *Hub[T]) Subscribe(ctx context.Context, key string) (*Subscription[T], error) {
	h.mu.Lock()
	rm, ok := h.rooms[key]
	if !ok {
		upstream, err := h.open(context.WithoutCancel(ctx), key)
		if err != nil {
			h.mu.Unlock()
			return nil, err
		}
		rm = &room[T]{
			upstream: upstream,
			members:  make(map[chan T]struct{}),
		}
		h.rooms[key] = rm
		go h.pump(key, rm)
	}
	member := make(chan T, 16)
	rm.members[member] = struct{}{}
	h.mu.Unlock()

	return NewFromChannel(member, func() { h.unsubscribe(key, member) }), nil
}

func (h *Hub[T]) pump(key string, rm *room[T]) {
	for ev := range rm.upstream.Events() {
		h.mu.Lock()
		for member := range rm.members {
			select {
			case member <- ev:
			default:
				h.log.Debug("live event dropped for slow consumer", zap.String("key", key))
			}
		}
		h.mu.Unlock()
	}
	// Upstream ended on its own; tear the room down so the next
	// subscriber reopens it.
	h.mu.Lock()
	if h.rooms[key] == rm {
		delete(h.rooms, key)
	}
	for member := range rm.members {
		close(member)
	}
	rm.members = make(map[chan T]struct{})
	h.mu.Unlock()
}

func (h *Hub[T]) unsubscribe(key string, member chan T) {
	h.mu.Lock()
	rm, ok := h.rooms[key]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, present := rm.members[member]; !present {
		h.mu.Unlock()
		return
	}
	delete(rm.members, member)
	close(member)
	last := len(rm.members) == 0
	if last {
		delete(h.rooms, key)
	}
	h.mu.Unlock()

	if last {
		rm.upstream.Close()
	}
}
