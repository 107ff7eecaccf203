/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/suparena/modelstore/errors"
	"github.com/suparena/modelstore/internal/logging"
	"github.com/suparena/modelstore/storagemodels"
)

// Backend names.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
)

// Environment variables that override file settings.
const (
	EnvBackend       = "MODELSTORE_BACKEND"
	EnvRedisAddr     = "MODELSTORE_REDIS_ADDR"
	EnvRedisPassword = "MODELSTORE_REDIS_PASSWORD"
	EnvDDBEndpoint   = "MODELSTORE_DDB_ENDPOINT"
	EnvLogLevel      = "MODELSTORE_LOG_LEVEL"
	EnvAWSRegion     = "AWS_REGION"
	EnvAWSAccessKey  = "AWS_ACCESS_KEY_ID"
	EnvAWSSecretKey  = "AWS_SECRET_ACCESS_KEY"
)

// Config is the file format read by Load.
type Config struct {
	Database   DatabaseConfig                  `yaml:"database"`
	Backend    string                          `yaml:"backend"`
	Redis      RedisConfig                     `yaml:"redis"`
	DynamoDB   DynamoDBConfig                  `yaml:"dynamodb"`
	Query      QueryConfig                     `yaml:"query"`
	Log        LogConfig                       `yaml:"log"`
	Partitions []storagemodels.PartitionConfig `yaml:"partitions"`
}

type DatabaseConfig struct {
	Name    string `yaml:"name"`
	Version int    `yaml:"version"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// DynamoDBConfig holds connection settings. Credentials only come from the environment.
type DynamoDBConfig struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

type QueryConfig struct {
	StrictOperators bool `yaml:"strictOperators"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the settings used for anything a file leaves out.
func Default() Config {
	return Config{
		Database: DatabaseConfig{Version: 1},
		Backend:  BackendMemory,
		Redis:    RedisConfig{Addr: "localhost:6379", Prefix: "modelstore:"},
		DynamoDB: DynamoDBConfig{Region: "us-east-1"},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides and validates the result. Variables are looked up in
// the process environment first, then in envFiles. With no envFiles, a .env
// file in the working directory is used when present.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if cfg, err = Parse(data); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	dotenv, err := readEnvFiles(envFiles)
	if err != nil {
		return Config{}, err
	}
	cfg = cfg.ApplyEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readEnvFiles(files []string) (map[string]string, error) {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil, nil
		}
		files = []string{".env"}
	}
	env, err := godotenv.Read(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to read env files: %w", err)
	}
	return env, nil
}

// Parse decodes YAML on top of Default.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv returns a copy of c with the variables found by lookup applied.
func (c Config) ApplyEnv(lookup func(string) (string, bool)) Config {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(&c.Backend, EnvBackend)
	set(&c.Redis.Addr, EnvRedisAddr)
	set(&c.Redis.Password, EnvRedisPassword)
	set(&c.DynamoDB.Region, EnvAWSRegion)
	set(&c.DynamoDB.AccessKey, EnvAWSAccessKey)
	set(&c.DynamoDB.SecretKey, EnvAWSSecretKey)
	set(&c.DynamoDB.Endpoint, EnvDDBEndpoint)
	set(&c.Log.Level, EnvLogLevel)
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	c.Partitions = append([]storagemodels.PartitionConfig(nil), c.Partitions...)
	return c
}

// Validate checks backend, log level and the database definition.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendRedis, BackendDynamoDB:
	default:
		return errors.NewValidationError("backend", fmt.Sprintf("unknown backend %q", c.Backend))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errors.NewValidationError("log.level", err.Error())
	}
	if c.Redis.DB < 0 {
		return errors.NewValidationError("redis.db", "must not be negative: "+strconv.Itoa(c.Redis.DB))
	}
	db := c.DatabaseConfig()
	return db.Validate()
}

// DatabaseConfig returns the database definition for the gateway.
func (c Config) DatabaseConfig() storagemodels.DatabaseConfig {
	return storagemodels.DatabaseConfig{
		Name:       c.Database.Name,
		Version:    c.Database.Version,
		Partitions: append([]storagemodels.PartitionConfig(nil), c.Partitions...),
	}
}

// Logger builds the logger for the configured level.
func (c Config) Logger() *slog.Logger {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.New(level)
}
