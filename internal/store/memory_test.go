package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		m := NewMemory()
		if _, err := m.Get(ctx, "worlds"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("set get remove", func(t *testing.T) {
		m := NewMemory()
		if err := m.Set(ctx, "worlds", "[]"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		value, err := m.Get(ctx, "worlds")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if value != "[]" {
			t.Fatalf("expected [], got %q", value)
		}
		if err := m.Remove(ctx, "worlds"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := m.Get(ctx, "worlds"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound after remove, got %v", err)
		}
	})

	t.Run("keys by prefix sorted", func(t *testing.T) {
		m := NewMemory()
		for _, key := range []string{"items_w1", "characters_w2", "characters_w1", "worlds"} {
			if err := m.Set(ctx, key, "[]"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		keys, err := m.Keys(ctx, "characters_")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(keys, []string{"characters_w1", "characters_w2"}) {
			t.Fatalf("unexpected keys: %#v", keys)
		}
	})
}
