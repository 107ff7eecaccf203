/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userProfile struct{}

func TestBootRunsOnce(t *testing.T) {
	runs := 0
	r := New(func(b *Builder[string]) {
		runs++
		b.Register("User", "audit")
	})
	assert.Equal(t, 0, runs, "boot is lazy")

	r.Lookup("User")
	r.Lookup("User")
	r.Boot()
	assert.Equal(t, 1, runs)
}

func TestLookupNormalisesKeys(t *testing.T) {
	r := New(func(b *Builder[string]) {
		b.Register("user_profile", "a")
		b.Register("UserProfile", "b")
	})

	for _, id := range []string{"user_profile", "UserProfile", "userProfile"} {
		assert.Equal(t, []string{"a", "b"}, r.Lookup(id), id)
	}
	assert.Equal(t, []string{"UserProfile"}, r.Types())
}

func TestLookupReturnsCopy(t *testing.T) {
	r := New(func(b *Builder[string]) {
		b.Register("User", "a", "b")
	})

	got := r.Lookup("User")
	got[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, r.Lookup("User"))
}

func TestUnknownType(t *testing.T) {
	r := New[string](nil)
	assert.Nil(t, r.Lookup("Nobody"))
	assert.False(t, r.Has("Nobody"))
}

func TestRegisterAfterBootPanics(t *testing.T) {
	var leaked *Builder[string]
	r := New(func(b *Builder[string]) { leaked = b })
	r.Boot()

	require.NotNil(t, leaked)
	assert.Panics(t, func() { leaked.Register("User", "late") })
}

func TestRegisterType(t *testing.T) {
	r := New(func(b *Builder[int]) {
		RegisterType[userProfile](b, 1)
		RegisterType[*userProfile](b, 2)
	})
	assert.Equal(t, []int{1, 2}, r.Lookup("user_profile"))
}

func TestOf(t *testing.T) {
	r := Of(map[string][]string{"order": {"x"}})
	assert.True(t, r.Has("Order"))
}
