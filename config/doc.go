/*
Package config loads the modelstore configuration from a YAML file and the
environment.

	database:
	  name: app
	  version: 1
	backend: redis            # memory | redis | dynamodb
	redis:
	  addr: localhost:6379
	  prefix: "modelstore:"
	dynamodb:
	  region: us-east-1
	query:
	  strictOperators: true
	log:
	  level: debug
	partitions:
	  - { name: users, keyPath: id, autoIncrement: true }
	  - { name: sessions, keyPath: token }

Environment variables (MODELSTORE_BACKEND, MODELSTORE_REDIS_ADDR,
MODELSTORE_REDIS_PASSWORD, MODELSTORE_DDB_ENDPOINT, MODELSTORE_LOG_LEVEL and the
AWS_REGION, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY trio) override the file.
They are read from the process environment and then from .env files.

	cfg, err := config.Load("modelstore.yaml")
	backend, err := config.OpenBackend(ctx, cfg, cfg.Logger())
	gw := gateway.New(backend, gateway.WithConfig(cfg.DatabaseConfig()))
*/
package config
