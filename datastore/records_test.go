/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/modelstore/errors"
	"github.com/suparena/modelstore/storagemodels"
)

type counter struct {
	next     int64
	observed []int64
}

func (c *counter) Next() (int64, error) {
	c.next++
	return c.next, nil
}

func (c *counter) Observe(k int64) error {
	c.observed = append(c.observed, k)
	if k > c.next {
		c.next = k
	}
	return nil
}

func TestPrepareWrite(t *testing.T) {
	auto := storagemodels.PartitionConfig{Name: "users", AutoIncrement: true}.WithDefaults()
	named := storagemodels.PartitionConfig{Name: "sessions", KeyPath: "token"}.WithDefaults()

	t.Run("generates missing key", func(t *testing.T) {
		seq := &counter{}
		rec, key, err := PrepareWrite(auto, storagemodels.Record{"name": "a"}, seq)
		require.NoError(t, err)
		assert.Equal(t, int64(1), key)
		assert.Equal(t, int64(1), rec["id"])
	})

	t.Run("explicit key advances generator", func(t *testing.T) {
		seq := &counter{}
		_, key, err := PrepareWrite(auto, storagemodels.Record{"id": 10}, seq)
		require.NoError(t, err)
		assert.Equal(t, int64(10), key)
		assert.Equal(t, []int64{10}, seq.observed)
	})

	t.Run("missing key on keyed partition", func(t *testing.T) {
		_, _, err := PrepareWrite(named, storagemodels.Record{"user": 1}, nil)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("invalid key", func(t *testing.T) {
		_, _, err := PrepareWrite(named, storagemodels.Record{"token": 1.5}, nil)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("input is not modified", func(t *testing.T) {
		in := storagemodels.Record{"name": "a"}
		_, _, err := PrepareWrite(auto, in, &counter{})
		require.NoError(t, err)
		_, has := in["id"]
		assert.False(t, has)
	})
}

func TestCanonical(t *testing.T) {
	when := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	in := storagemodels.Record{
		"i":    int32(3),
		"u":    uint8(4),
		"f":    float32(1.5),
		"s":    "x",
		"t":    when,
		"list": []any{1, "a"},
		"tags": []string{"x"},
		"nest": map[string]any{"n": 2},
		"ji":   json.Number("12"),
		"jf":   json.Number("1.25"),
	}
	out, err := Canonical(in)
	require.NoError(t, err)

	assert.Equal(t, int64(3), out["i"])
	assert.Equal(t, int64(4), out["u"])
	assert.Equal(t, float64(1.5), out["f"])
	assert.Equal(t, "2025-03-01T12:00:00.000Z", out["t"])
	assert.Equal(t, []any{int64(1), "a"}, out["list"])
	assert.Equal(t, []any{"x"}, out["tags"])
	assert.Equal(t, map[string]any{"n": int64(2)}, out["nest"])
	assert.Equal(t, int64(12), out["ji"])
	assert.Equal(t, 1.25, out["jf"])

	out["nest"].(map[string]any)["n"] = 99
	assert.Equal(t, 2, in["nest"].(map[string]any)["n"], "canonical copies are deep")
}

func TestCanonicalOverflow(t *testing.T) {
	_, err := Canonical(storagemodels.Record{"big": uint64(1 << 63)})
	assert.True(t, errors.IsValidationError(err))
}
