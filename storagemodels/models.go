/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"fmt"
	"sort"

	"github.com/suparena/modelstore/errors"
)

// DefaultKeyPath is the primary-key field used when a partition does not declare one.
const DefaultKeyPath = "id"

// Key types a partition may declare for its primary key.
const (
	KeyTypeNumber = "number"
	KeyTypeString = "string"
)

// Record is a flat field->value mapping representing one persisted entity.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge returns a copy of r overlaid with the fields of other.
func (r Record) Merge(other Record) Record {
	out := r.Clone()
	if out == nil {
		out = make(Record, len(other))
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// PartitionConfig declares one partition and its key configuration.
// It is fixed at creation and never altered afterwards.
type PartitionConfig struct {
	Name          string `yaml:"name" json:"name" mapstructure:"name" cbor:"name"`
	KeyPath       string `yaml:"keyPath" json:"keyPath" mapstructure:"keyPath" cbor:"keyPath"`
	AutoIncrement bool   `yaml:"autoIncrement" json:"autoIncrement" mapstructure:"autoIncrement" cbor:"autoIncrement"`
	KeyType       string `yaml:"keyType,omitempty" json:"keyType,omitempty" mapstructure:"keyType" cbor:"keyType"`
}

// WithDefaults fills in the key path and key type.
func (p PartitionConfig) WithDefaults() PartitionConfig {
	if p.KeyPath == "" {
		p.KeyPath = DefaultKeyPath
	}
	if p.AutoIncrement {
		p.KeyType = KeyTypeNumber
	}
	if p.KeyType == "" {
		p.KeyType = KeyTypeString
	}
	return p
}

// DatabaseConfig is the static configuration read once when a connection opens.
type DatabaseConfig struct {
	Name       string            `yaml:"name" json:"name" mapstructure:"name"`
	Version    int               `yaml:"version" json:"version" mapstructure:"version"`
	Partitions []PartitionConfig `yaml:"partitions" json:"partitions" mapstructure:"partitions"`
}

// Validate checks the configuration and applies defaults in place.
func (c *DatabaseConfig) Validate() error {
	if c.Name == "" {
		return errors.NewValidationError("name", "database name is required")
	}
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Version < 0 {
		return errors.NewValidationError("version", "database version must be positive")
	}
	seen := make(map[string]bool, len(c.Partitions))
	for i, p := range c.Partitions {
		if p.Name == "" {
			return errors.NewValidationError("partitions", fmt.Sprintf("partition #%d has no name", i))
		}
		if seen[p.Name] {
			return errors.NewValidationError("partitions", fmt.Sprintf("partition %q declared twice", p.Name))
		}
		seen[p.Name] = true
		p = p.WithDefaults()
		if p.KeyType != KeyTypeNumber && p.KeyType != KeyTypeString {
			return errors.NewValidationError("keyType", fmt.Sprintf("partition %q: unsupported key type %q", p.Name, p.KeyType))
		}
		c.Partitions[i] = p
	}
	return nil
}

// Partition looks up a partition by name.
func (c DatabaseConfig) Partition(name string) (PartitionConfig, bool) {
	for _, p := range c.Partitions {
		if p.Name == name {
			return p.WithDefaults(), true
		}
	}
	return PartitionConfig{}, false
}

// Schema describes what a backend holds after it was opened.
type Schema struct {
	Database   string
	Version    int
	Partitions map[string]PartitionConfig
}

// Names returns the partition names in sorted order.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s.Partitions))
	for name := range s.Partitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the schema contains the named partition.
func (s Schema) Has(name string) bool {
	_, ok := s.Partitions[name]
	return ok
}

// Upgrade computes the schema that results from opening stored with cfg.
// A higher configured version adds every missing partition; existing partitions are kept
// as they are. The returned slice lists the partitions that must be created.
func Upgrade(stored Schema, cfg DatabaseConfig) (Schema, []PartitionConfig, error) {
	if cfg.Version < stored.Version {
		return stored, nil, errors.NewVersionError(cfg.Name, cfg.Version, stored.Version)
	}
	next := Schema{
		Database:   cfg.Name,
		Version:    stored.Version,
		Partitions: make(map[string]PartitionConfig, len(stored.Partitions)+len(cfg.Partitions)),
	}
	for name, p := range stored.Partitions {
		next.Partitions[name] = p
	}
	if cfg.Version == stored.Version {
		return next, nil, nil
	}
	var created []PartitionConfig
	for _, p := range cfg.Partitions {
		if _, exists := next.Partitions[p.Name]; exists {
			continue
		}
		p = p.WithDefaults()
		next.Partitions[p.Name] = p
		created = append(created, p)
	}
	next.Version = cfg.Version
	return next, created, nil
}
