package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error { return f(ctx) }

func TestRegistry_StartAndWait(t *testing.T) {
	t.Parallel()
	r := NewRegistry(nil)

	done := make(chan struct{})
	sess, err := r.Start(context.Background(), "a", runnerFunc(func(ctx context.Context) error {
		close(done)
		return nil
	}))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner never ran")
	}
	sess.Wait()

	if len(r.List()) != 0 {
		t.Error("expected session to be removed from the registry after completion")
	}
}

func TestRegistry_RejectsDuplicateName(t *testing.T) {
	t.Parallel()
	r := NewRegistry(nil)
	block := make(chan struct{})

	_, err := r.Start(context.Background(), "a", runnerFunc(func(ctx context.Context) error {
		<-block
		return nil
	}))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, err = r.Start(context.Background(), "a", runnerFunc(func(ctx context.Context) error {
		return nil
	}))
	if err == nil {
		t.Fatal("expected an error starting a duplicate session name")
	}

	close(block)
}

func TestRegistry_StopCancelsContext(t *testing.T) {
	t.Parallel()
	r := NewRegistry(nil)

	canceled := make(chan struct{})
	sess, err := r.Start(context.Background(), "a", runnerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		close(canceled)
		return ctx.Err()
	}))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	r.Stop("a")
	sess.Wait()

	select {
	case <-canceled:
	default:
		t.Error("expected the runner's context to be canceled")
	}
	if !errors.Is(sess.Err(), context.Canceled) {
		t.Errorf("Err() = %v, want context.Canceled", sess.Err())
	}
}
