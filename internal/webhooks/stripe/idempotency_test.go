package stripewebhook

import (
	"context"
	"fmt"
	"testing"
	"time"
)

type fakeStore struct {
	keys   map[string]string
	setErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{keys: map[string]string{}}
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	return f.keys[key], nil
}

func (f *fakeStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if f.setErr != nil {
		return false, f.setErr
	}
	if _, ok := f.keys[key]; ok {
		return false, nil
	}
	f.keys[key] = fmt.Sprint(value)
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.keys, key)
	}
	return nil
}

func TestIdempotencyGuardMarksFirstDelivery(t *testing.T) {
	guard, err := NewIdempotencyGuard(newFakeStore(), time.Minute, "stripe_webhook")
	if err != nil {
		t.Fatalf("guard setup: %v", err)
	}

	seen, err := guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil {
		t.Fatalf("check and mark: %v", err)
	}
	if seen {
		t.Fatalf("first delivery reported as already processed")
	}

	seen, err = guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil {
		t.Fatalf("check and mark replay: %v", err)
	}
	if !seen {
		t.Fatalf("replay not detected")
	}
}

func TestIdempotencyGuardDeleteAllowsRetry(t *testing.T) {
	guard, err := NewIdempotencyGuard(newFakeStore(), time.Minute, "stripe_webhook")
	if err != nil {
		t.Fatalf("guard setup: %v", err)
	}

	if _, err := guard.CheckAndMark(context.Background(), "evt_2"); err != nil {
		t.Fatalf("check and mark: %v", err)
	}
	if err := guard.Delete(context.Background(), "evt_2"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	seen, err := guard.CheckAndMark(context.Background(), "evt_2")
	if err != nil {
		t.Fatalf("check after delete: %v", err)
	}
	if seen {
		t.Fatalf("expected event to be retryable after delete")
	}
}

func TestIdempotencyGuardRejectsEmptyEventID(t *testing.T) {
	guard, err := NewIdempotencyGuard(newFakeStore(), time.Minute, "stripe_webhook")
	if err != nil {
		t.Fatalf("guard setup: %v", err)
	}
	if _, err := guard.CheckAndMark(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty event id")
	}
}
