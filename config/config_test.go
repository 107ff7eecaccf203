/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/modelstore/datastore/ddb"
	"github.com/suparena/modelstore/datastore/memory"
	"github.com/suparena/modelstore/datastore/redis"
	"github.com/suparena/modelstore/errors"
	"github.com/suparena/modelstore/storagemodels"
)

const sample = `
database:
  name: app
  version: 2
backend: redis
redis:
  addr: redis.internal:6379
  db: 3
query:
  strictOperators: true
log:
  level: debug
partitions:
  - { name: users, keyPath: id, autoIncrement: true }
  - { name: sessions, keyPath: token }
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "app", cfg.Database.Name)
	assert.Equal(t, 2, cfg.Database.Version)
	assert.Equal(t, BackendRedis, cfg.Backend)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "modelstore:", cfg.Redis.Prefix, "defaults survive")
	assert.True(t, cfg.Query.StrictOperators)
	assert.Equal(t, "debug", cfg.Log.Level)
	require.Len(t, cfg.Partitions, 2)
	assert.True(t, cfg.Partitions[0].AutoIncrement)
	assert.Equal(t, "token", cfg.Partitions[1].KeyPath)
}

func TestLoadAppliesEnvironment(t *testing.T) {
	path := writeFile(t, "modelstore.yaml", sample)
	envFile := writeFile(t, ".env", "MODELSTORE_REDIS_PASSWORD=from-dotenv\nMODELSTORE_REDIS_ADDR=dotenv:1\n")
	t.Setenv(EnvRedisAddr, "env:6379")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(path, envFile)
	require.NoError(t, err)
	assert.Equal(t, "env:6379", cfg.Redis.Addr, "process environment wins over .env")
	assert.Equal(t, "from-dotenv", cfg.Redis.Password)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv(EnvBackend, "")
	_, err := Load("", writeFile(t, ".env", ""))
	assert.True(t, errors.IsValidationError(err), "a database name is required")

	t.Setenv(EnvBackend, "DynamoDB")
	t.Setenv(EnvAWSAccessKey, "key")
	t.Setenv(EnvAWSSecretKey, "secret")
	path := writeFile(t, "db.yaml", "database: { name: app }\n")
	cfg, err := Load(path, writeFile(t, ".env", ""))
	require.NoError(t, err)
	assert.Equal(t, BackendDynamoDB, cfg.Backend)
	assert.Equal(t, "key", cfg.DynamoDB.AccessKey)
	assert.Equal(t, "secret", cfg.DynamoDB.SecretKey)
	assert.Equal(t, 1, cfg.Database.Version)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "database: [\n"), writeFile(t, ".env", ""))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Default()
	base.Database.Name = "app"
	require.NoError(t, base.Validate())

	tests := map[string]func(*Config){
		"unknown backend":     func(c *Config) { c.Backend = "sqlite" },
		"unknown log level":   func(c *Config) { c.Log.Level = "loud" },
		"negative redis db":   func(c *Config) { c.Redis.DB = -1 },
		"duplicate partition": func(c *Config) { c.Partitions = []storagemodels.PartitionConfig{{Name: "a"}, {Name: "a"}} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			assert.True(t, errors.IsValidationError(cfg.Validate()))
		})
	}
}

func TestDatabaseConfigIsACopy(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	db := cfg.DatabaseConfig()
	require.NoError(t, db.Validate())
	assert.Equal(t, "", cfg.Partitions[1].KeyType, "validation defaults do not leak back")
	assert.Equal(t, storagemodels.KeyTypeString, db.Partitions[1].KeyType)
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	mem, err := OpenBackend(ctx, Default(), nil)
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, mem)

	srv := miniredis.RunT(t)
	cfg := Default()
	cfg.Backend = BackendRedis
	cfg.Redis.Addr = srv.Addr()
	cfg.Database.Name = "app"
	cfg.Partitions = []storagemodels.PartitionConfig{{Name: "users", AutoIncrement: true}}
	rb, err := OpenBackend(ctx, cfg, cfg.Logger())
	require.NoError(t, err)
	assert.IsType(t, &redis.Store{}, rb)
	t.Cleanup(func() { _ = rb.Close() })

	schema, err := rb.Open(ctx, cfg.DatabaseConfig())
	require.NoError(t, err)
	assert.True(t, schema.Has("users"))

	cfg.Backend = BackendDynamoDB
	cfg.DynamoDB.Endpoint = "http://localhost:8000"
	db, err := OpenBackend(ctx, cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &ddb.Store{}, db)

	cfg.Backend = "sqlite"
	_, err = OpenBackend(ctx, cfg, nil)
	assert.True(t, errors.IsValidationError(err))
}
