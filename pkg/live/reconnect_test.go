package live

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/googleapis/gax-go/v2"
)

func quickBackoff() gax.Backoff {
	return gax.Backoff{Initial: time.Millisecond, Max: 2 * time.Millisecond, Multiplier: 1.1}
}

func TestRedialerRetriesUntilSuccess(t *testing.T) {
	var attempts int
	r := &Redialer{Backoff: quickBackoff(), MaxAttempts: 5}
	err := r.Connect(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("refused")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRedialerExhaustsAttempts(t *testing.T) {
	wantErr := errors.New("refused")
	var attempts int
	r := &Redialer{Backoff: quickBackoff(), MaxAttempts: 3}
	err := r.Connect(context.Background(), func(context.Context) error {
		attempts++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRedialerZeroValueSingleAttempt(t *testing.T) {
	var attempts int
	r := &Redialer{}
	r.Connect(context.Background(), func(context.Context) error {
		attempts++
		return errors.New("refused")
	})
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRedialerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Redialer{Backoff: gax.Backoff{Initial: time.Minute}, MaxAttempts: 10}
	var attempts int
	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Connect(ctx, func(context.Context) error {
			attempts++
			return errors.New("refused")
		})
	}()
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("redialer did not honor cancellation")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}
