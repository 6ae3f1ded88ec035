package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitRunsJob(t *testing.T) {
	q := New(2, 10)
	q.Start()

	done := make(chan Handle, 1)
	handle, err := q.Submit(func(_ context.Context, h Handle) error {
		done <- h
		return nil
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if handle == "" {
		t.Error("expected non-empty handle")
	}

	select {
	case got := <-done:
		if got != handle {
			t.Errorf("job saw handle %q, submitted %q", got, handle)
		}
	case <-time.After(time.Second):
		t.Fatal("job did not run")
	}

	q.Stop()
}

func TestStopDrainsPendingJobs(t *testing.T) {
	q := New(1, 10)
	q.Start()

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		if _, err := q.Submit(func(context.Context, Handle) error {
			ran.Add(1)
			return nil
		}); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	q.Stop()

	if got := ran.Load(); got != 5 {
		t.Errorf("ran %d jobs, want 5", got)
	}
}

func TestSubmitAfterStop(t *testing.T) {
	q := New(1, 1)
	q.Start()
	q.Stop()

	if _, err := q.Submit(func(context.Context, Handle) error { return nil }); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
}

func TestSubmitConcurrentWithStop(t *testing.T) {
	q := New(2, 32)
	q.Start()

	// Hammer Submit while Stop closes the queue. A submission must
	// either land before the close or fail with ErrStopped; it must
	// never hit the closed channel.
	start := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-start
		for i := 0; i < 1000; i++ {
			_, err := q.Submit(func(context.Context, Handle) error { return nil })
			if err != nil && !errors.Is(err, ErrStopped) && !errors.Is(err, ErrQueueFull) {
				t.Errorf("Submit returned unexpected error: %v", err)
				return
			}
		}
	}()

	close(start)
	q.Stop()
	<-done

	if _, err := q.Submit(func(context.Context, Handle) error { return nil }); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped after Stop, got %v", err)
	}
}

func TestQueueFull(t *testing.T) {
	// One worker blocked, buffer of one: the third submission has
	// nowhere to go.
	q := New(1, 1)
	q.Start()

	block := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	if _, err := q.Submit(func(context.Context, Handle) error {
		defer wg.Done()
		<-block
		return nil
	}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// Give the worker time to pick up the first job.
	time.Sleep(50 * time.Millisecond)

	if _, err := q.Submit(func(context.Context, Handle) error { return nil }); err != nil {
		t.Fatalf("Submit into buffer failed: %v", err)
	}
	if _, err := q.Submit(func(context.Context, Handle) error { return nil }); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}

	close(block)
	wg.Wait()
	q.Stop()
}

func TestRevokePendingJob(t *testing.T) {
	q := New(1, 10)
	q.Start()

	block := make(chan struct{})
	if _, err := q.Submit(func(context.Context, Handle) error {
		<-block
		return nil
	}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	var ran atomic.Bool
	handle, err := q.Submit(func(context.Context, Handle) error {
		ran.Store(true)
		return nil
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	q.Revoke(handle)
	close(block)
	q.Stop()

	if ran.Load() {
		t.Error("revoked pending job still ran")
	}
}

func TestRevokeRunningJobCancelsContext(t *testing.T) {
	q := New(1, 10)
	q.Start()

	started := make(chan struct{})
	cancelled := make(chan struct{})
	handle, err := q.Submit(func(ctx context.Context, _ Handle) error {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	<-started
	q.Revoke(handle)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("running job context was not cancelled")
	}

	q.Stop()
}

func TestRevokeUnknownHandleIsNoOp(t *testing.T) {
	q := New(1, 10)
	q.Start()

	// None of these should panic or affect later jobs.
	q.Revoke("")
	q.Revoke("no-such-handle")

	done := make(chan struct{})
	if _, err := q.Submit(func(context.Context, Handle) error {
		close(done)
		return nil
	}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not run")
	}

	q.Stop()
}

func TestKillCancelsRunningJobs(t *testing.T) {
	q := New(2, 10)
	q.Start()

	started := make(chan struct{})
	if _, err := q.Submit(func(ctx context.Context, _ Handle) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	<-started

	finished := make(chan struct{})
	go func() {
		q.Kill()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Kill did not return")
	}
}

func TestStopIdempotent(t *testing.T) {
	q := New(1, 1)
	q.Start()
	q.Stop()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("second Stop panicked: %v", r)
		}
	}()
	q.Stop()
}

func TestJobErrorDoesNotStopWorker(t *testing.T) {
	q := New(1, 10)
	q.Start()

	if _, err := q.Submit(func(context.Context, Handle) error {
		return errors.New("encode blew up")
	}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	done := make(chan struct{})
	if _, err := q.Submit(func(context.Context, Handle) error {
		close(done)
		return nil
	}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker stopped after failed job")
	}

	q.Stop()
}
