/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/suparena/modelstore/datastore"
	"github.com/suparena/modelstore/datastore/ddb"
	"github.com/suparena/modelstore/datastore/memory"
	"github.com/suparena/modelstore/datastore/redis"
	"github.com/suparena/modelstore/errors"
	"github.com/suparena/modelstore/internal/logging"
)

// OpenBackend constructs the configured backend. It does not open a database;
// that happens when the gateway connects.
func OpenBackend(ctx context.Context, c Config, logger *slog.Logger) (datastore.Backend, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	switch c.Backend {
	case BackendMemory:
		return memory.New(), nil
	case BackendRedis:
		return redis.New(c.Redis.Addr, c.Redis.Password, c.Redis.DB,
			redis.WithPrefix(c.Redis.Prefix),
			redis.WithLogger(logger),
		), nil
	case BackendDynamoDB:
		client, err := ddb.NewClient(ctx, ddb.ClientConfig{
			Region:    c.DynamoDB.Region,
			AccessKey: c.DynamoDB.AccessKey,
			SecretKey: c.DynamoDB.SecretKey,
			Endpoint:  c.DynamoDB.Endpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
		}
		return ddb.New(client, ddb.WithLogger(logger)), nil
	default:
		return nil, errors.NewValidationError("backend", fmt.Sprintf("unknown backend %q", c.Backend))
	}
}
