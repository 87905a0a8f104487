package livewatch_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dalemusser/langis/internal/app/system/livewatch"
)

func recvTimeout[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	var zero T
	return zero
}

func waitClosed[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for channel close")
		}
	}
}

func TestSubscriptionDeliversAndCloses(t *testing.T) {
	src := make(chan string)
	stopped := make(chan struct{})
	sub := livewatch.NewFromChannel[string](src, func() { close(stopped) })

	go func() { src <- "hello" }()
	if got := recvTimeout(t, sub.Events()); got != "hello" {
		t.Fatalf("got %q", got)
	}

	sub.Close()
	waitClosed(t, sub.Events())
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("stop func not called on Close")
	}
	if err := sub.Err(); err != nil {
		t.Fatalf("Err after deliberate Close = %v", err)
	}

	// Close must be idempotent.
	sub.Close()
}

func TestSubscriptionEndsWhenSourceCloses(t *testing.T) {
	src := make(chan int)
	sub := livewatch.NewFromChannel[int](src, nil)
	close(src)
	waitClosed(t, sub.Events())
}

func TestHubFansOutToAllSubscribers(t *testing.T) {
	upstream := make(chan string)
	var opens atomic.Int32
	hub := livewatch.NewHub[string](func(ctx context.Context, key string) (*livewatch.Subscription[string], error) {
		opens.Add(1)
		return livewatch.NewFromChannel[string](upstream, nil), nil
	}, zap.NewNop())

	a, err := hub.Subscribe(context.Background(), "course-1")
	if err != nil {
		t.Fatalf("Subscribe a: %v", err)
	}
	b, err := hub.Subscribe(context.Background(), "course-1")
	if err != nil {
		t.Fatalf("Subscribe b: %v", err)
	}
	if n := opens.Load(); n != 1 {
		t.Fatalf("upstream opened %d times, want 1", n)
	}

	go func() { upstream <- "ahoj" }()
	if got := recvTimeout(t, a.Events()); got != "ahoj" {
		t.Fatalf("a got %q", got)
	}
	if got := recvTimeout(t, b.Events()); got != "ahoj" {
		t.Fatalf("b got %q", got)
	}

	a.Close()
	b.Close()
}

func TestHubClosesUpstreamWhenLastSubscriberLeaves(t *testing.T) {
	stopped := make(chan struct{})
	var opens atomic.Int32
	hub := livewatch.NewHub[string](func(ctx context.Context, key string) (*livewatch.Subscription[string], error) {
		opens.Add(1)
		src := make(chan string)
		n := opens.Load()
		return livewatch.NewFromChannel[string](src, func() {
			if n == 1 {
				close(stopped)
			}
		}), nil
	}, zap.NewNop())

	a, _ := hub.Subscribe(context.Background(), "course-1")
	b, _ := hub.Subscribe(context.Background(), "course-1")

	a.Close()
	select {
	case <-stopped:
		t.Fatal("upstream closed while a subscriber remained")
	case <-time.After(50 * time.Millisecond):
	}

	b.Close()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("upstream not closed after last subscriber left")
	}

	// The next subscriber reopens the upstream.
	c, err := hub.Subscribe(context.Background(), "course-1")
	if err != nil {
		t.Fatalf("resubscribe: %v", err)
	}
	if n := opens.Load(); n != 2 {
		t.Fatalf("upstream opened %d times, want 2", n)
	}
	c.Close()
}

func TestHubSurvivesFirstSubscriberDisconnect(t *testing.T) {
	src := make(chan string, 1)
	hub := livewatch.NewHub[string](func(ctx context.Context, key string) (*livewatch.Subscription[string], error) {
		out := make(chan string)
		go func() {
			defer close(out)
			for {
				select {
				case <-ctx.Done():
					return
				case v, ok := <-src:
					if !ok {
						return
					}
					select {
					case <-ctx.Done():
						return
					case out <- v:
					}
				}
			}
		}()
		return livewatch.NewFromChannel[string](out, nil), nil
	}, zap.NewNop())

	ctxA, cancelA := context.WithCancel(context.Background())
	a, err := hub.Subscribe(ctxA, "course-1")
	if err != nil {
		t.Fatalf("Subscribe a: %v", err)
	}
	b, err := hub.Subscribe(context.Background(), "course-1")
	if err != nil {
		t.Fatalf("Subscribe b: %v", err)
	}

	// The subscriber that opened the room goes away; the room's
	// upstream must not die with it.
	cancelA()
	a.Close()

	src <- "dobrý den"
	if got := recvTimeout(t, b.Events()); got != "dobrý den" {
		t.Fatalf("b got %q", got)
	}
	b.Close()
}

func TestHubKeysAreIndependent(t *testing.T) {
	ups := map[string]chan string{
		"one": make(chan string, 1),
		"two": make(chan string, 1),
	}
	hub := livewatch.NewHub[string](func(ctx context.Context, key string) (*livewatch.Subscription[string], error) {
		return livewatch.NewFromChannel[string](ups[key], nil), nil
	}, zap.NewNop())

	a, _ := hub.Subscribe(context.Background(), "one")
	b, _ := hub.Subscribe(context.Background(), "two")
	defer a.Close()
	defer b.Close()

	ups["two"] <- "only-two"
	if got := recvTimeout(t, b.Events()); got != "only-two" {
		t.Fatalf("b got %q", got)
	}
	select {
	case ev := <-a.Events():
		t.Fatalf("a received %q for another key", ev)
	case <-time.After(50 * time.Millisecond):
	}
}
