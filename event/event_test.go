/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitOrder(t *testing.T) {
	bus := New[string]()
	var calls []string
	bus.On(Saving, func(_ context.Context, p string) error {
		calls = append(calls, "first:"+p)
		return nil
	})
	bus.On(Saving, func(_ context.Context, p string) error {
		calls = append(calls, "second:"+p)
		return nil
	})
	bus.On(Saved, func(_ context.Context, p string) error {
		calls = append(calls, "other")
		return nil
	})

	require.NoError(t, bus.Emit(context.Background(), Saving, "x"))
	assert.Equal(t, []string{"first:x", "second:x"}, calls)
}

func TestEmitFailFast(t *testing.T) {
	bus := New[int]()
	boom := errors.New("boom")
	called := false
	bus.On(Creating, func(context.Context, int) error { return boom })
	bus.On(Creating, func(context.Context, int) error {
		called = true
		return nil
	})

	err := bus.Emit(context.Background(), Creating, 1)
	assert.ErrorIs(t, err, boom)
	assert.False(t, called, "handlers after a failing one must not run")
}

func TestEmitWithoutListeners(t *testing.T) {
	var bus Bus[int]
	assert.NoError(t, bus.Emit(context.Background(), Deleted, 1))
	assert.Equal(t, 0, bus.Len(Deleted))
}

func TestOff(t *testing.T) {
	bus := New[int]()
	count := 0
	h := func(context.Context, int) error {
		count++
		return nil
	}
	a := bus.On(Updated, h)
	bus.On(Updated, h)

	assert.True(t, bus.Off(Updated, a))
	assert.False(t, bus.Off(Updated, a), "second Off of the same listener is a no-op")
	require.NoError(t, bus.Emit(context.Background(), Updated, 0))
	assert.Equal(t, 1, count)
}

func TestOnce(t *testing.T) {
	bus := New[int]()
	count := 0
	bus.Once(Booted, func(context.Context, int) error {
		count++
		return nil
	})
	assert.Equal(t, 1, bus.Len(Booted))

	require.NoError(t, bus.Emit(context.Background(), Booted, 0))
	require.NoError(t, bus.Emit(context.Background(), Booted, 0))
	assert.Equal(t, 1, count)
	assert.Equal(t, 0, bus.Len(Booted))
}

func TestOnceRemovedEvenWhenFailing(t *testing.T) {
	bus := New[int]()
	bus.Once(Booting, func(context.Context, int) error { return errors.New("nope") })

	assert.Error(t, bus.Emit(context.Background(), Booting, 0))
	assert.NoError(t, bus.Emit(context.Background(), Booting, 0))
}

func TestListenerAddedDuringEmitWaitsForNextEmit(t *testing.T) {
	bus := New[int]()
	late := 0
	bus.On(Fetched, func(context.Context, int) error {
		bus.On(Fetched, func(context.Context, int) error {
			late++
			return nil
		})
		return nil
	})

	require.NoError(t, bus.Emit(context.Background(), Fetched, 0))
	assert.Equal(t, 0, late)
}

func TestKinds(t *testing.T) {
	kinds := Kinds()
	assert.Len(t, kinds, 14)
	assert.Equal(t, Booting, kinds[0])
	assert.Equal(t, "force_deleted", ForceDeleted.String())
}
